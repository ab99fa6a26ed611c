package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"payloadcrypt/internal/core/domain"
	"payloadcrypt/internal/render"
)

type CryptoCfg struct {
	Key           []byte
	StrictPadding bool
	DecodePolicy  domain.DecodePolicy
}

type SourceCfg struct {
	BaseURL string
	Timeout time.Duration
}

type StorageCfg struct {
	Bucket         string
	PayloadPrefix  string
	MetadataPrefix string
}

type Cfg struct {
	Crypto     CryptoCfg
	Source     SourceCfg
	Storage    StorageCfg
	Output     string
	LogLevel   string
	ServerAddr string
}

// Load reads .env (if present) and the process environment.
func Load() (Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Cfg{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PAYLOAD_TIMEOUT", "10s")
	v.SetDefault("PAYLOAD_DECODE_POLICY", string(domain.DecodeStrict))
	v.SetDefault("PAYLOAD_STRICT_PADDING", false)
	v.SetDefault("PAYLOAD_OUTPUT", render.FormatAuto)
	v.SetDefault("PAYLOAD_S3_PREFIX", "payloads/")
	v.SetDefault("PAYLOAD_S3_METADATA_PREFIX", "metadata/")
	v.SetDefault("PAYLOAD_SERVER_ADDR", ":8089")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// FromViper builds and validates a Cfg from an already populated viper instance.
func FromViper(v *viper.Viper) (Cfg, error) {
	key, err := ParseKey(v.GetString("PAYLOAD_KEY_HEX"))
	if err != nil {
		return Cfg{}, err
	}

	cfg := Cfg{
		Crypto: CryptoCfg{
			Key:           key,
			StrictPadding: v.GetBool("PAYLOAD_STRICT_PADDING"),
			DecodePolicy:  domain.DecodePolicy(strings.ToLower(v.GetString("PAYLOAD_DECODE_POLICY"))),
		},
		Source: SourceCfg{
			BaseURL: strings.TrimSpace(v.GetString("PAYLOAD_BASE_URL")),
			Timeout: v.GetDuration("PAYLOAD_TIMEOUT"),
		},
		Storage: StorageCfg{
			Bucket:         v.GetString("AWS_BUCKET_NAME"),
			PayloadPrefix:  v.GetString("PAYLOAD_S3_PREFIX"),
			MetadataPrefix: v.GetString("PAYLOAD_S3_METADATA_PREFIX"),
		},
		Output:     strings.ToLower(v.GetString("PAYLOAD_OUTPUT")),
		LogLevel:   v.GetString("LOG_LEVEL"),
		ServerAddr: v.GetString("PAYLOAD_SERVER_ADDR"),
	}

	if err := cfg.Validate(); err != nil {
		return Cfg{}, err
	}
	return cfg, nil
}

// ParseKey decodes a hex AES-256 key.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("PAYLOAD_KEY_HEX is required")
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("PAYLOAD_KEY_HEX is not valid hex: %w", err)
	}
	if len(key) != domain.KeySize {
		return nil, fmt.Errorf("PAYLOAD_KEY_HEX must decode to %d bytes, got %d", domain.KeySize, len(key))
	}
	return key, nil
}

func (c Cfg) Validate() error {
	switch c.Crypto.DecodePolicy {
	case domain.DecodeStrict, domain.DecodeLossy:
	default:
		return fmt.Errorf("PAYLOAD_DECODE_POLICY must be %q or %q, got %q", domain.DecodeStrict, domain.DecodeLossy, c.Crypto.DecodePolicy)
	}
	switch c.Output {
	case render.FormatAuto, render.FormatJSON, render.FormatYAML, render.FormatPlist, render.FormatRaw:
	default:
		return fmt.Errorf("PAYLOAD_OUTPUT %q is not supported", c.Output)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("PAYLOAD_TIMEOUT must be positive, got %s", c.Source.Timeout)
	}
	return nil
}

package commands

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"payloadcrypt/internal/config"
	"payloadcrypt/internal/core/domain"
	"payloadcrypt/internal/encryption/service"
	"payloadcrypt/internal/pkg/crypto/aes"
	"payloadcrypt/internal/pkg/logger"
	"payloadcrypt/internal/render"
	"payloadcrypt/internal/storage/s3"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

// NewRootCmd builds the root command. Output goes to out, logs to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "payloadcrypt",
		Short: "Fetch, decrypt and render AES-256-CBC payload envelopes",
		Long: `payloadcrypt decrypts payloads shaped {"iv":"<hex>","data":"<hex>"} with the
key in PAYLOAD_KEY_HEX, strips PKCS#7 padding and prints the result.
Bodies that are not envelopes are printed unchanged.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().String("output", "", "output format: auto, json, yaml, plist or raw (overrides PAYLOAD_OUTPUT)")
	rootCmd.PersistentFlags().Int("preview", 0, "truncate non-structured output to N characters")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	return rootCmd
}

// app carries what every payload command needs once configuration is loaded.
type app struct {
	cfg    config.Cfg
	svc    service.Service
	render render.Options
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	logger.Init(level, cmd.ErrOrStderr())

	opts := render.Options{Format: cfg.Output}
	if flag, _ := cmd.Flags().GetString("output"); flag != "" {
		opts.Format = flag
	}
	opts.Preview, _ = cmd.Flags().GetInt("preview")

	svc := service.NewService(
		aes.NewCBCEncryptor(domain.KeySize, aes.WithStrictPadding(cfg.Crypto.StrictPadding)),
		cfg.Crypto.Key,
		service.WithDecodePolicy(cfg.Crypto.DecodePolicy),
	)

	return &app{cfg: cfg, svc: svc, render: opts}, nil
}

// print renders a routed result to the command's output.
func (a *app) print(cmd *cobra.Command, res *domain.Result) error {
	if res.Encrypted {
		log.Info().Bool("wrapped", res.Wrapped).Bool("lossy", res.Plaintext.Lossy).Msg("payload decrypted")
	} else {
		log.Info().Int("bytes", len(res.Body)).Msg("payload is not encrypted, passing through")
	}
	return render.Write(cmd.OutOrStdout(), []byte(res.Text()), a.render)
}

// surfaceRaw writes the decrypted bytes of a DecodeError to the command
// output, as a hex dump when that output is a terminal. err is returned as is
// so the command still fails.
func surfaceRaw(cmd *cobra.Command, err error) error {
	var e *domain.Error
	if !errors.As(err, &e) || e.Kind != domain.KindDecode || len(e.Raw) == 0 {
		return err
	}

	out := cmd.OutOrStdout()
	raw := e.Raw
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		raw = []byte(hex.Dump(e.Raw))
	}
	if _, werr := out.Write(raw); werr != nil {
		log.Error().Err(werr).Msg("failed to write undecodable plaintext")
	}
	log.Warn().Int("bytes", len(e.Raw)).Msg("plaintext is not valid UTF-8, wrote raw bytes")
	return err
}

// FormatError renders err for the terminal. Domain errors already name their
// kind.
func FormatError(err error) string {
	if domain.KindOf(err) != 0 {
		return err.Error()
	}
	return "Error: " + err.Error()
}

// newStore connects to the configured bucket and logs the AWS identity in use.
func (a *app) newStore(ctx context.Context) (*s3.Store, error) {
	if a.cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is required for S3 operations")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	s3.LogCallerIdentity(ctx, awsCfg)

	return s3.NewClient(ctx, awsCfg, a.cfg.Storage.Bucket,
		s3.WithPrefixes(a.cfg.Storage.PayloadPrefix, a.cfg.Storage.MetadataPrefix))
}

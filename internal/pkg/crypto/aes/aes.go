// payloadcrypt/internal/pkg/crypto/aes/aes.go
package aes

import (
    "crypto/aes"
    "crypto/cipher"
    "crypto/rand"
    "fmt"
    "io"

    "payloadcrypt/internal/core/domain"
)

const (
    IVSize = aes.BlockSize // CBC IV is one block
)

type CBCEncryptor struct {
    keySize       int
    strictPadding bool
    random        io.Reader
}

type Option func(*CBCEncryptor)

// WithStrictPadding makes Decrypt verify every padding byte, not only the last.
func WithStrictPadding(strict bool) Option {
    return func(e *CBCEncryptor) {
        e.strictPadding = strict
    }
}

// WithRandom sets the IV source. Defaults to crypto/rand.
func WithRandom(r io.Reader) Option {
    return func(e *CBCEncryptor) {
        if r != nil {
            e.random = r
        }
    }
}

func NewCBCEncryptor(keySize int, opts ...Option) *CBCEncryptor {
    e := &CBCEncryptor{
        keySize: keySize,
        random:  rand.Reader,
    }
    for _, opt := range opts {
        opt(e)
    }
    return e
}

func (e *CBCEncryptor) GenerateIV() ([]byte, error) {
    iv := make([]byte, IVSize)
    if _, err := io.ReadFull(e.random, iv); err != nil {
        return nil, fmt.Errorf("failed to generate IV: %w", err)
    }
    return iv, nil
}

func (e *CBCEncryptor) Encrypt(plaintext []byte, key []byte, iv []byte) ([]byte, error) {
    if err := e.checkKeyIV("encrypt", key, iv); err != nil {
        return nil, err
    }

    block, err := aes.NewCipher(key)
    if err != nil {
        return nil, fmt.Errorf("failed to create cipher: %w", err)
    }

    padded := Pad(plaintext, aes.BlockSize)
    out := make([]byte, len(padded))
    cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
    return out, nil
}

// Decrypt runs AES-CBC over ciphertext and strips PKCS7 padding. It never
// returns partial output: length is checked before any block is touched.
func (e *CBCEncryptor) Decrypt(ciphertext []byte, key []byte, iv []byte) ([]byte, error) {
    if len(ciphertext) == 0 {
        return nil, domain.NewError(domain.KindInvalidLength, "decrypt", "empty ciphertext")
    }
    if len(ciphertext)%aes.BlockSize != 0 {
        return nil, domain.NewError(domain.KindInvalidLength, "decrypt",
            "ciphertext length %d is not a multiple of %d", len(ciphertext), aes.BlockSize)
    }
    if err := e.checkKeyIV("decrypt", key, iv); err != nil {
        return nil, err
    }

    block, err := aes.NewCipher(key)
    if err != nil {
        return nil, fmt.Errorf("failed to create cipher: %w", err)
    }

    raw := make([]byte, len(ciphertext))
    cipher.NewCBCDecrypter(block, iv).CryptBlocks(raw, ciphertext)

    if e.strictPadding {
        return UnpadStrict(raw, aes.BlockSize)
    }
    return Unpad(raw, aes.BlockSize)
}

func (e *CBCEncryptor) checkKeyIV(op string, key, iv []byte) error {
    if len(key) != e.keySize {
        return domain.NewError(domain.KindInvalidKey, op, "invalid key size: expected %d, got %d", e.keySize, len(key))
    }
    if len(iv) != IVSize {
        return domain.NewError(domain.KindInvalidKey, op, "invalid IV size: expected %d, got %d", IVSize, len(iv))
    }
    return nil
}

// payloadcrypt/internal/core/ports/encryption.go
package ports

import (
    "context"

    "payloadcrypt/internal/core/domain"
)

type DecryptionService interface {
    Open(ctx context.Context, env domain.Envelope) (*domain.Plaintext, error)
    Route(ctx context.Context, body []byte) (*domain.Result, error)
    Seal(ctx context.Context, plaintext []byte) (*domain.Envelope, error)
}

// Cipher is the block-level primitive the service is built on.
type Cipher interface {
    GenerateIV() ([]byte, error)
    Encrypt(plaintext []byte, key []byte, iv []byte) ([]byte, error)
    Decrypt(ciphertext []byte, key []byte, iv []byte) ([]byte, error)
}

// Source fetches a payload body by reference (URL path or object key).
type Source interface {
    Fetch(ctx context.Context, ref string) ([]byte, error)
}

package service

import (
    "context"

    "payloadcrypt/internal/core/domain"
    "payloadcrypt/internal/core/ports"
)

type Service interface {
    Open(ctx context.Context, env domain.Envelope) (*domain.Plaintext, error)
    Route(ctx context.Context, body []byte) (*domain.Result, error)
    Seal(ctx context.Context, plaintext []byte) (*domain.Envelope, error)
}

var _ ports.DecryptionService = (*EncryptionService)(nil)

type EncryptionService struct {
    cipher ports.Cipher
    key    []byte
    policy domain.DecodePolicy
}

type Option func(*EncryptionService)

// WithDecodePolicy selects what happens when plaintext is not valid UTF-8.
func WithDecodePolicy(p domain.DecodePolicy) Option {
    return func(s *EncryptionService) {
        if p != "" {
            s.policy = p
        }
    }
}

// NewService binds a cipher to a key. The key is copied; callers may reuse
// their slice.
func NewService(cipher ports.Cipher, key []byte, opts ...Option) Service {
    s := &EncryptionService{
        cipher: cipher,
        key:    append([]byte(nil), key...),
        policy: domain.DecodeStrict,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

package service

import (
    "context"
    "encoding/hex"
    "fmt"

    "payloadcrypt/internal/core/domain"
)

// Seal encrypts plaintext under a fresh IV and returns the hex envelope the
// payload API serves.
func (s *EncryptionService) Seal(ctx context.Context, plaintext []byte) (*domain.Envelope, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }

    iv, err := s.cipher.GenerateIV()
    if err != nil {
        return nil, fmt.Errorf("failed to generate IV: %w", err)
    }

    encrypted, err := s.cipher.Encrypt(plaintext, s.key, iv)
    if err != nil {
        return nil, fmt.Errorf("failed to encrypt payload: %w", err)
    }

    return &domain.Envelope{
        IV:   hex.EncodeToString(iv),
        Data: hex.EncodeToString(encrypted),
    }, nil
}

package service

import (
    "context"
    "strings"
    "unicode/utf8"

    "github.com/rs/zerolog/log"

    "payloadcrypt/internal/core/domain"
)

func (s *EncryptionService) Open(ctx context.Context, env domain.Envelope) (*domain.Plaintext, error) {
    if err := ctx.Err(); err != nil {
        return nil, err
    }

    iv, err := decodeHex("iv", env.IV)
    if err != nil {
        return nil, err
    }
    ciphertext, err := decodeHex("data", env.Data)
    if err != nil {
        return nil, err
    }

    log.Debug().
        Str("iv", prefix(env.IV, 8)).
        Int("ciphertext_len", len(ciphertext)).
        Msg("decrypting payload")

    raw, err := s.cipher.Decrypt(ciphertext, s.key, iv)
    if err != nil {
        return nil, err
    }

    return s.decode(raw)
}

func (s *EncryptionService) decode(raw []byte) (*domain.Plaintext, error) {
    if utf8.Valid(raw) {
        return &domain.Plaintext{Raw: raw, Text: string(raw)}, nil
    }

    if s.policy == domain.DecodeLossy {
        var b strings.Builder
        b.Grow(len(raw))
        // Ranging over a string yields utf8.RuneError once per invalid byte.
        for _, r := range string(raw) {
            b.WriteRune(r)
        }
        log.Warn().Int("len", len(raw)).Msg("plaintext is not valid UTF-8, substituted replacement characters")
        return &domain.Plaintext{Raw: raw, Text: b.String(), Lossy: true}, nil
    }

    e := domain.NewError(domain.KindDecode, "decode", "plaintext is not valid UTF-8")
    e.Raw = raw
    return nil, e
}

package service

import (
    "context"
    "encoding/json"

    "github.com/rs/zerolog/log"

    "payloadcrypt/internal/core/domain"
)

// Route decides whether body is an encrypted envelope. Anything that is not
// an envelope, directly or one level under "data", is passed through as is.
func (s *EncryptionService) Route(ctx context.Context, body []byte) (*domain.Result, error) {
    env, wrapped, ok := parseEnvelope(body)
    if !ok {
        log.Debug().Int("len", len(body)).Msg("payload is not an envelope, passing through")
        return &domain.Result{Body: body}, nil
    }

    pt, err := s.Open(ctx, env)
    if err != nil {
        return nil, err
    }

    return &domain.Result{
        Encrypted: true,
        Wrapped:   wrapped,
        Body:      body,
        Plaintext: pt,
    }, nil
}

func parseEnvelope(body []byte) (domain.Envelope, bool, bool) {
    var top map[string]json.RawMessage
    if err := json.Unmarshal(body, &top); err != nil {
        return domain.Envelope{}, false, false
    }
    if env, ok := envelopeFields(top); ok {
        return env, false, true
    }

    inner, ok := top["data"]
    if !ok {
        return domain.Envelope{}, false, false
    }
    var nested map[string]json.RawMessage
    if err := json.Unmarshal(inner, &nested); err != nil {
        return domain.Envelope{}, false, false
    }
    if env, ok := envelopeFields(nested); ok {
        return env, true, true
    }
    return domain.Envelope{}, false, false
}

func envelopeFields(m map[string]json.RawMessage) (domain.Envelope, bool) {
    rawIV, okIV := m["iv"]
    rawData, okData := m["data"]
    if !okIV || !okData {
        return domain.Envelope{}, false
    }
    var env domain.Envelope
    if json.Unmarshal(rawIV, &env.IV) != nil || json.Unmarshal(rawData, &env.Data) != nil {
        return domain.Envelope{}, false
    }
    return env, true
}

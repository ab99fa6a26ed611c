package service

import (
    "context"
    "encoding/hex"
    "io"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "payloadcrypt/internal/core/domain"
    "payloadcrypt/internal/encryption/service/mocks"
)

func TestEncryptionService_Seal(t *testing.T) {
    tests := []struct {
        name  string
        input []byte
    }{
        {name: "Small JSON", input: []byte(`{"id":"abc","name":"reader"}`)},
        {name: "Empty", input: []byte{}},
        {name: "Block aligned", input: []byte("0123456789abcdef")},
        {name: "Multibyte", input: []byte("测试加密密钥")},
    }

    svc := referenceService(t)

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            env, err := svc.Seal(context.Background(), tt.input)
            require.NoError(t, err)

            iv, err := hex.DecodeString(env.IV)
            require.NoError(t, err)
            assert.Len(t, iv, 16)
            assert.Equal(t, 0, len(env.Data)%32, "hex ciphertext must be block aligned")

            pt, err := svc.Open(context.Background(), *env)
            require.NoError(t, err)
            assert.Equal(t, string(tt.input), pt.Text)
        })
    }
}

func TestEncryptionService_Seal_FreshIV(t *testing.T) {
    svc := referenceService(t)

    a, err := svc.Seal(context.Background(), []byte("same"))
    require.NoError(t, err)
    b, err := svc.Seal(context.Background(), []byte("same"))
    require.NoError(t, err)

    assert.NotEqual(t, a.IV, b.IV)
    assert.NotEqual(t, a.Data, b.Data)
}

func TestEncryptionService_Seal_IVFailure(t *testing.T) {
    m := mocks.NewMockCipher()
    m.GenerateIVFunc = func() ([]byte, error) {
        return nil, io.ErrUnexpectedEOF
    }
    svc := NewService(m, make([]byte, domain.KeySize))

    _, err := svc.Seal(context.Background(), []byte("x"))
    require.Error(t, err)
    assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
    assert.Contains(t, err.Error(), "failed to generate IV")
}

package service

import (
    "context"
    "encoding/hex"
    "errors"
    "os"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "payloadcrypt/internal/core/domain"
    "payloadcrypt/internal/encryption/service/mocks"
    "payloadcrypt/internal/pkg/crypto/aes"
)

const (
    referenceKeyHex = "5486abfd96080e09e82bb2ab93258bde19d069185366b5aa8d38467835f2e7aa"
    referenceIVHex  = "3c861af635f10076e6cecd2d95cf61a8"
)

func referenceService(t *testing.T, opts ...Option) Service {
    t.Helper()
    key, err := hex.DecodeString(referenceKeyHex)
    require.NoError(t, err)
    return NewService(aes.NewCBCEncryptor(domain.KeySize), key, opts...)
}

func TestEncryptionService_Open_ReferenceVector(t *testing.T) {
    ct, err := os.ReadFile("testdata/reference_ciphertext.hex")
    require.NoError(t, err)
    want, err := os.ReadFile("testdata/reference_plaintext.json")
    require.NoError(t, err)

    svc := referenceService(t)
    pt, err := svc.Open(context.Background(), domain.Envelope{IV: referenceIVHex, Data: string(ct)})
    require.NoError(t, err)

    assert.Equal(t, want, pt.Raw)
    assert.Equal(t, string(want), pt.Text)
    assert.False(t, pt.Lossy)
}

func TestEncryptionService_Open(t *testing.T) {
    tests := []struct {
        name     string
        env      domain.Envelope
        wantText string
        wantKind domain.ErrorKind
    }{
        {
            name:     "Success - identity cipher",
            env:      domain.Envelope{IV: strings.Repeat("00", 16), Data: hex.EncodeToString([]byte("hello"))},
            wantText: "hello",
        },
        {
            name:     "Success - upper case hex with line breaks",
            env:      domain.Envelope{IV: strings.Repeat("AB", 16), Data: "68656C\n6C6F\r\n"},
            wantText: "hello",
        },
        {
            name:     "Failure - malformed iv",
            env:      domain.Envelope{IV: "zz", Data: "00"},
            wantKind: domain.KindInvalidHex,
        },
        {
            name:     "Failure - odd length data",
            env:      domain.Envelope{IV: strings.Repeat("00", 16), Data: "abc"},
            wantKind: domain.KindInvalidHex,
        },
        {
            name:     "Failure - invalid UTF-8",
            env:      domain.Envelope{IV: strings.Repeat("00", 16), Data: "ff fe 41"},
            wantKind: domain.KindDecode,
        },
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            svc := NewService(mocks.NewMockCipher(), make([]byte, 32))

            pt, err := svc.Open(context.Background(), tt.env)
            if tt.wantKind != 0 {
                require.Error(t, err)
                assert.Equal(t, tt.wantKind, domain.KindOf(err))
                assert.Nil(t, pt)
                return
            }
            require.NoError(t, err)
            assert.Equal(t, tt.wantText, pt.Text)
        })
    }
}

func TestEncryptionService_Open_DecodeErrorCarriesRaw(t *testing.T) {
    svc := NewService(mocks.NewMockCipher(), make([]byte, 32))

    _, err := svc.Open(context.Background(), domain.Envelope{IV: strings.Repeat("00", 16), Data: "41ff42"})
    require.ErrorIs(t, err, domain.ErrDecode)

    var derr *domain.Error
    require.True(t, errors.As(err, &derr))
    assert.Equal(t, []byte{0x41, 0xff, 0x42}, derr.Raw)
}

func TestEncryptionService_Open_LossyPolicy(t *testing.T) {
    svc := NewService(mocks.NewMockCipher(), make([]byte, 32), WithDecodePolicy(domain.DecodeLossy))

    pt, err := svc.Open(context.Background(), domain.Envelope{IV: strings.Repeat("00", 16), Data: "41ff42"})
    require.NoError(t, err)

    assert.True(t, pt.Lossy)
    assert.Equal(t, "A\uFFFDB", pt.Text)
    assert.Equal(t, []byte{0x41, 0xff, 0x42}, pt.Raw)
}

func TestEncryptionService_Open_CipherErrorsPropagate(t *testing.T) {
    svc := referenceService(t)
    iv := referenceIVHex

    tests := []struct {
        name     string
        data     string
        wantErr  error
    }{
        {name: "Empty ciphertext", data: "", wantErr: domain.ErrInvalidLength},
        {name: "Unaligned ciphertext", data: strings.Repeat("00", 17), wantErr: domain.ErrInvalidLength},
        {name: "Key check vector", data: "7c8f3b7885c2ef0b0f5a6cab79c17dcaabb3bd3f3da4ab968c1548fb21e4dad0", wantErr: domain.ErrPadding},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            env := domain.Envelope{IV: iv, Data: tt.data}
            if tt.name == "Key check vector" {
                env.IV = "0123456789abcdef0123456789abcdef"
            }
            _, err := svc.Open(context.Background(), env)
            assert.ErrorIs(t, err, tt.wantErr)
        })
    }
}

func TestEncryptionService_Open_ShortIV(t *testing.T) {
    svc := referenceService(t)
    _, err := svc.Open(context.Background(), domain.Envelope{IV: "00", Data: strings.Repeat("00", 16)})
    assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestEncryptionService_Open_CanceledContext(t *testing.T) {
    m := mocks.NewMockCipher()
    svc := NewService(m, make([]byte, 32))

    ctx, cancel := context.WithCancel(context.Background())
    cancel()

    _, err := svc.Open(ctx, domain.Envelope{IV: strings.Repeat("00", 16), Data: "00"})
    assert.ErrorIs(t, err, context.Canceled)
    assert.Zero(t, m.DecryptCalls)
}

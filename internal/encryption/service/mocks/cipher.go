package mocks

import (
    "bytes"
)

// MockCipher is an identity cipher: Encrypt and Decrypt return their input.
type MockCipher struct {
    GenerateIVFunc func() ([]byte, error)
    EncryptFunc    func(plaintext []byte, key []byte, iv []byte) ([]byte, error)
    DecryptFunc    func(ciphertext []byte, key []byte, iv []byte) ([]byte, error)

    DecryptCalls int
}

func NewMockCipher() *MockCipher {
    return &MockCipher{
        GenerateIVFunc: func() ([]byte, error) {
            return bytes.Repeat([]byte{2}, 16), nil
        },
        EncryptFunc: func(plaintext []byte, key []byte, iv []byte) ([]byte, error) {
            return plaintext, nil
        },
        DecryptFunc: func(ciphertext []byte, key []byte, iv []byte) ([]byte, error) {
            return ciphertext, nil
        },
    }
}

func (m *MockCipher) GenerateIV() ([]byte, error) {
    return m.GenerateIVFunc()
}

func (m *MockCipher) Encrypt(plaintext []byte, key []byte, iv []byte) ([]byte, error) {
    return m.EncryptFunc(plaintext, key, iv)
}

func (m *MockCipher) Decrypt(ciphertext []byte, key []byte, iv []byte) ([]byte, error) {
    m.DecryptCalls++
    return m.DecryptFunc(ciphertext, key, iv)
}

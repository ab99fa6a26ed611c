package aes

import (
    "bytes"

    "payloadcrypt/internal/core/domain"
)

// Pad appends PKCS7 padding. A block-aligned input gets a full block of padding.
func Pad(data []byte, blockSize int) []byte {
    p := blockSize - len(data)%blockSize
    out := make([]byte, len(data), len(data)+p)
    copy(out, data)
    return append(out, bytes.Repeat([]byte{byte(p)}, p)...)
}

// Unpad reads the final byte as the pad length and drops that many bytes.
// Only the range of the pad byte is checked.
func Unpad(data []byte, blockSize int) ([]byte, error) {
    if len(data) == 0 || len(data)%blockSize != 0 {
        return nil, domain.NewError(domain.KindInvalidLength, "unpad", "data length %d is not block aligned", len(data))
    }
    p := int(data[len(data)-1])
    if p < 1 || p > blockSize {
        return nil, domain.NewError(domain.KindPadding, "unpad", "pad byte %d outside [1,%d]", p, blockSize)
    }
    return data[:len(data)-p], nil
}

// UnpadStrict is Unpad plus a check that all p trailing bytes equal p.
func UnpadStrict(data []byte, blockSize int) ([]byte, error) {
    out, err := Unpad(data, blockSize)
    if err != nil {
        return nil, err
    }
    p := data[len(data)-1]
    for _, b := range data[len(out):] {
        if b != p {
            return nil, domain.NewError(domain.KindPadding, "unpad", "inconsistent padding bytes")
        }
    }
    return out, nil
}

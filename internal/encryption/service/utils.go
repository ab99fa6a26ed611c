package service

import (
    "encoding/hex"
    "strings"
    "unicode"

    "payloadcrypt/internal/core/domain"
)

// decodeHex accepts upper or lower case and ignores embedded whitespace, which
// shows up when ciphertext is copied out of logs with line breaks.
func decodeHex(field, s string) ([]byte, error) {
    cleaned := strings.Map(func(r rune) rune {
        if unicode.IsSpace(r) {
            return -1
        }
        return r
    }, s)

    b, err := hex.DecodeString(cleaned)
    if err != nil {
        e := domain.NewError(domain.KindInvalidHex, "decode "+field, "malformed hex")
        e.Err = err
        return nil, e
    }
    return b, nil
}

func prefix(s string, n int) string {
    if len(s) <= n {
        return s
    }
    return s[:n] + "..."
}

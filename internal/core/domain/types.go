// payloadcrypt/internal/core/domain/types.go
package domain

import (
    "time"
)

const (
    BlockSize = 16 // AES block size and CBC IV length
    KeySize   = 32 // AES-256
)

// CipherPayload is the decoded input of a single decrypt call.
type CipherPayload struct {
    Key        []byte
    IV         []byte
    Ciphertext []byte
}

// Envelope is the wire shape served by the payload API.
type Envelope struct {
    IV   string `json:"iv"`
    Data string `json:"data"`
}

type DecodePolicy string

const (
    DecodeStrict DecodePolicy = "strict"
    DecodeLossy  DecodePolicy = "lossy"
)

// Plaintext is the decrypted, unpadded payload.
type Plaintext struct {
    Raw   []byte
    Text  string
    Lossy bool // Text had invalid UTF-8 replaced
}

// Result is what routing a fetched body produces.
type Result struct {
    Encrypted bool
    Wrapped   bool // envelope was nested under a top-level "data" field
    Body      []byte
    Plaintext *Plaintext
}

// Text returns the displayable payload regardless of whether it was encrypted.
func (r *Result) Text() string {
    if r.Plaintext != nil {
        return r.Plaintext.Text
    }
    return string(r.Body)
}

// PayloadMetadata describes a sealed payload kept in object storage.
type PayloadMetadata struct {
    ID          string
    Name        string
    ContentType string
    Size        int64
    Algorithm   string
    CreatedAt   time.Time
}

package storage

import (
    "context"

    "payloadcrypt/internal/core/domain"
)

// Store defines the object storage operations used for sealed payloads
type Store interface {
    PutPayload(ctx context.Context, env domain.Envelope, metadata domain.PayloadMetadata) (string, error)
    GetPayload(ctx context.Context, id string) ([]byte, error)
    GetMetadata(ctx context.Context, id string) (domain.PayloadMetadata, error)
    Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Config holds configuration for storage services
type Config struct {
    BucketName     string
    Region         string
    PayloadPrefix  string
    MetadataPrefix string
}

package s3

import (
    "context"
    "fmt"

    "github.com/aws/aws-sdk-go-v2/aws"
    "github.com/aws/aws-sdk-go-v2/service/s3"
    "github.com/aws/aws-sdk-go-v2/service/sts"
    "github.com/rs/zerolog/log"

    "payloadcrypt/internal/storage"
)

// DefaultConfig provides default configuration values
var DefaultConfig = storage.Config{
    BucketName:     "payloadcrypt-payloads",
    Region:         "us-east-1",
    PayloadPrefix:  "payloads/",
    MetadataPrefix: "metadata/",
}

// NewClient creates a new S3-backed store and verifies the bucket is reachable
func NewClient(ctx context.Context, cfg aws.Config, bucket string, opts ...func(*storage.Config)) (*Store, error) {
    client := s3.NewFromConfig(cfg)

    _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
        Bucket: aws.String(bucket),
    })
    if err != nil {
        return nil, fmt.Errorf("failed to access bucket %s: %w", bucket, err)
    }

    config := DefaultConfig
    config.BucketName = bucket
    config.Region = cfg.Region
    for _, opt := range opts {
        opt(&config)
    }

    return New(client, config), nil
}

// WithPrefixes sets custom prefixes for payload and metadata objects
func WithPrefixes(payload, metadata string) func(*storage.Config) {
    return func(c *storage.Config) {
        if payload != "" {
            c.PayloadPrefix = payload
        }
        if metadata != "" {
            c.MetadataPrefix = metadata
        }
    }
}

// LogCallerIdentity prints the AWS identity in use. Failures are logged, not returned.
func LogCallerIdentity(ctx context.Context, cfg aws.Config) {
    identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
    if err != nil {
        log.Warn().Err(err).Msg("unable to get caller identity")
        return
    }
    log.Debug().
        Str("account", aws.ToString(identity.Account)).
        Str("arn", aws.ToString(identity.Arn)).
        Str("region", cfg.Region).
        Msg("aws caller identity")
}

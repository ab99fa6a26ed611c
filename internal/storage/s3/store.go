package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"payloadcrypt/internal/core/domain"
	"payloadcrypt/internal/storage"
)

// API is the subset of *s3.Client the store uses.
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ storage.Store = (*Store)(nil)

type Store struct {
	client API
	config storage.Config
}

func New(client API, config storage.Config) *Store {
	return &Store{
		client: client,
		config: config,
	}
}

// PutPayload writes the envelope JSON and its metadata, returning the payload ID.
func (s *Store) PutPayload(ctx context.Context, env domain.Envelope, metadata domain.PayloadMetadata) (string, error) {
	if metadata.ID == "" {
		metadata.ID = uuid.NewString()
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(path.Join(s.config.PayloadPrefix, metadata.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store payload: %w", err)
	}

	metadataBytes, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(path.Join(s.config.MetadataPrefix, metadata.ID+".json")),
		Body:        bytes.NewReader(metadataBytes),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store metadata: %w", err)
	}

	log.Info().Str("id", metadata.ID).Str("bucket", s.config.BucketName).Msg("stored sealed payload")
	return metadata.ID, nil
}

// ErrInvalidID is returned for payload IDs that would leave their prefix.
var ErrInvalidID = errors.New("invalid payload ID")

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *Store) GetPayload(ctx context.Context, id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.getObject(ctx, path.Join(s.config.PayloadPrefix, id))
}

func (s *Store) GetMetadata(ctx context.Context, id string) (domain.PayloadMetadata, error) {
	var metadata domain.PayloadMetadata
	if err := validateID(id); err != nil {
		return metadata, err
	}

	data, err := s.getObject(ctx, path.Join(s.config.MetadataPrefix, id+".json"))
	if err != nil {
		return metadata, err
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return metadata, nil
}

// Fetch resolves ref as either "s3://bucket/key" or a payload ID under the
// configured prefix.
func (s *Store) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(ref, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 reference %q", ref)
		}
		return s.getObjectFrom(ctx, bucket, key)
	}
	return s.GetPayload(ctx, ref)
}

// EnsureBucket creates the bucket if needed and the prefix folders.
func (s *Store) EnsureBucket(ctx context.Context) error {
	bucket := s.config.BucketName

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		log.Info().Str("bucket", bucket).Msg("creating bucket")
		input := &s3.CreateBucketInput{
			Bucket: aws.String(bucket),
		}

		// Only add location constraint if not in us-east-1
		if s.config.Region != "" && s.config.Region != "us-east-1" {
			input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.config.Region),
			}
		}

		if _, err := s.client.CreateBucket(ctx, input); err != nil {
			return fmt.Errorf("unable to create bucket: %w", err)
		}
	} else {
		log.Info().Str("bucket", bucket).Msg("bucket already exists")
	}

	for _, folder := range []string{s.config.PayloadPrefix, s.config.MetadataPrefix} {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(folder),
		})
		if err != nil {
			log.Warn().Err(err).Str("folder", folder).Msg("unable to create folder")
			continue
		}
		log.Info().Str("folder", folder).Msg("created folder")
	}
	return nil
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	return s.getObjectFrom(ctx, s.config.BucketName, key)
}

func (s *Store) getObjectFrom(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("object %s/%s not found: %w", bucket, key, err)
		}
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

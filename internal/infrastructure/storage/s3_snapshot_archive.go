// Package storage archives upstream catalog snapshots to object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	"github.com/catalogsync/backend/internal/domain/catalog"
	infraconfig "github.com/catalogsync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultSnapshotPrefix is the key prefix of archived snapshots
const DefaultSnapshotPrefix = "snapshots/"

var _ catalogapp.SnapshotArchive = (*S3SnapshotArchive)(nil)

// snapshotDocument is the archived object body
type snapshotDocument struct {
	ArchivedAt time.Time            `json:"archived_at"`
	Count      int                  `json:"count"`
	Records    []catalog.RawProduct `json:"records"`
}

// S3SnapshotArchive stores fetched snapshots as JSON objects.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3SnapshotArchive struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3SnapshotArchiveOption is a functional option for configuring S3SnapshotArchive
type S3SnapshotArchiveOption func(*S3SnapshotArchive)

// WithLogger sets a custom logger for S3SnapshotArchive
func WithLogger(logger *zap.Logger) S3SnapshotArchiveOption {
	return func(s *S3SnapshotArchive) {
		s.logger = logger
	}
}

// NewS3SnapshotArchive creates a new S3SnapshotArchive from configuration
func NewS3SnapshotArchive(cfg *infraconfig.StorageConfig, opts ...S3SnapshotArchiveOption) (*S3SnapshotArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}

	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
		// S3-compatible servers do not all accept the default flexible checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	prefix := cfg.SnapshotPrefix
	if prefix == "" {
		prefix = DefaultSnapshotPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	archive := &S3SnapshotArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(archive)
	}

	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3SnapshotArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating snapshot bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// another instance may have created it in the meantime
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Snapshot bucket created successfully", zap.String("bucket", s.bucket))
	return nil
}

// Archive writes the snapshot to <prefix><key>
func (s *S3SnapshotArchive) Archive(ctx context.Context, key string, records []catalog.RawProduct) error {
	if key == "" {
		return errors.New("snapshot key is required")
	}

	body, err := json.Marshal(snapshotDocument{
		ArchivedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    records,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	objectKey := s.ObjectKey(key)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.Debug("Archived catalog snapshot",
		zap.String("bucket", s.bucket),
		zap.String("key", objectKey),
		zap.Int("records", len(records)),
	)
	return nil
}

// Load reads an archived snapshot back
func (s *S3SnapshotArchive) Load(ctx context.Context, key string) ([]catalog.RawProduct, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return doc.Records, nil
}

// ObjectKey returns the full object key of an archive key
func (s *S3SnapshotArchive) ObjectKey(key string) string {
	return s.prefix + key
}

// GetBucket returns the bucket name
func (s *S3SnapshotArchive) GetBucket() string {
	return s.bucket
}

// Package storage provides the listing feed sources the catalog resyncs from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3FeedSource implements FeedSource
var _ catalogapp.FeedSource = (*S3FeedSource)(nil)

// S3FeedSource reads feed objects from an S3 bucket.
// It works against any S3-compatible store (AWS S3, MinIO, RustFS).
type S3FeedSource struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3FeedSourceOption is a functional option for configuring S3FeedSource
type S3FeedSourceOption func(*S3FeedSource)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3FeedSourceOption {
	return func(s *S3FeedSource) {
		s.logger = logger
	}
}

// WithPrefix scopes every key under prefix
func WithPrefix(prefix string) S3FeedSourceOption {
	return func(s *S3FeedSource) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// NewS3FeedSource creates an S3FeedSource from configuration.
// Static credentials are used when an access key is configured, otherwise the
// default AWS credential chain applies.
func NewS3FeedSource(ctx context.Context, cfg *config.FeedConfig, opts ...S3FeedSourceOption) (*S3FeedSource, error) {
	if cfg == nil {
		return nil, errors.New("feed configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("feed bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("feed access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "ap-northeast-2"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(normalizeEndpoint(cfg.Endpoint))
		}
	})

	src := &S3FeedSource{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(src)
	}
	return src, nil
}

// normalizeEndpoint adds a scheme to bare host:port endpoints
func normalizeEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

// Open fetches the object named key
func (s *S3FeedSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, shared.NewNotFoundError("feed object")
		}
		s.logger.Warn("failed to fetch feed object",
			zap.String("bucket", s.bucket),
			zap.String("key", objectKey),
			zap.Error(err),
		)
		return nil, shared.NewRetryableError(fmt.Errorf("failed to fetch feed object %s: %w", objectKey, err))
	}
	return out.Body, nil
}

func (s *S3FeedSource) objectKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", shared.NewValidationError("key", "feed key is required")
	}
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key, nil
}

// Bucket returns the bucket name
func (s *S3FeedSource) Bucket() string {
	return s.bucket
}

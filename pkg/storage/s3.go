package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Scheme prefixes object references stored in the catalog, e.g. s3://media/videos/v1.mp4.
const Scheme = "s3://"

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	PublicRead           bool // media bucket objects are world-readable; skip signing
	PresignExpireMinutes int
}

// S3 resolves stored media references to URLs a browser can load.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     S3Config
	logger  *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using credentials from .env/config", zap.String("region", cfg.Region), zap.String("media_bucket", cfg.MediaBucket))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:  client,
		presign: s3.NewPresignClient(client),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// ParseObjectURL splits s3://bucket/key. A reference without a bucket
// (s3:///key or s3://key) is not valid.
func ParseObjectURL(raw string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(raw, Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(raw, Scheme)
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for download.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// MediaBucket returns the default media bucket name.
func (s *S3) MediaBucket() string { return s.cfg.MediaBucket }

// PublicObjectURL returns the public URL for an object (no signing; use when bucket is public).
func (s *S3) PublicObjectURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.cfg.Region, key)
}

// ObjectURL turns an s3:// reference into a loadable URL: public for the
// public media bucket, pre-signed otherwise.
func (s *S3) ObjectURL(ctx context.Context, raw string) (string, error) {
	bucket, key, ok := ParseObjectURL(raw)
	if !ok {
		return "", fmt.Errorf("invalid object reference %q", raw)
	}
	if s.cfg.PublicRead && bucket == s.MediaBucket() {
		return s.PublicObjectURL(bucket, key), nil
	}
	return s.GeneratePresignedDownloadURL(ctx, bucket, key, s.PresignExpire())
}

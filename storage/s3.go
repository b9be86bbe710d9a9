package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/atelier-studio/atelier-backend/errs"
)

// S3Options configures the remote object-store backend.
type S3Options struct {
	Bucket    string
	Region    string
	KeyPrefix string
	// BaseURL overrides the public URL root; defaults to the bucket's
	// virtual-hosted endpoint.
	BaseURL string
	// BoundBox is the side of the square a stored image must fit within.
	// Zero disables the transform.
	BoundBox int
}

// S3Store keeps blobs in an S3 bucket. Unlike the local backend it delegates
// size policy to the provider, but it applies a bound-box downscale on ingest
// so oversized originals never reach the bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	baseURL   string
	boundBox  int
	logger    zerolog.Logger
}

// NewS3Store creates the remote backend using AWS SDK v2's default
// credential chain.
func NewS3Store(ctx context.Context, opts S3Options, logger zerolog.Logger) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name cannot be empty")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("S3 region cannot be empty")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3Store{
		client:    s3.NewFromConfig(cfg),
		bucket:    opts.Bucket,
		keyPrefix: strings.Trim(opts.KeyPrefix, "/"),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		boundBox:  opts.BoundBox,
		logger:    logger.With().Str("storage", "s3").Logger(),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, up Upload) (string, error) {
	if err := checkMediaType(up); err != nil {
		return "", err
	}

	data, err := io.ReadAll(up.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if s.boundBox > 0 {
		transformed, err := fitWithin(data, s.boundBox)
		if err != nil {
			return "", fmt.Errorf("not a decodable image: %w", errs.ErrUnsupportedMediaType)
		}
		data = transformed
	}

	key := generateName(up.Filename)
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(up.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return fmt.Errorf("url %q is not served by this store: %w", url, errs.ErrBlobNotFound)
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFoundError(err) {
			return errs.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// isS3NotFoundError checks if an error is an S3 "not found" error.
func isS3NotFoundError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-studio/atelier-backend/config"
	"github.com/atelier-studio/atelier-backend/errs"
)

// DefaultMaxFileSize bounds uploads on the local backend (5 MiB). The remote
// backend delegates size policy to the provider.
const DefaultMaxFileSize = 5 * 1024 * 1024

// Upload is a single file lifted out of a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ImageStore persists uploaded image binaries and addresses them by URL.
type ImageStore interface {
	// Put stores the upload under a collision-resistant generated name and
	// returns the URL the blob is retrievable at. Files that are not
	// jpeg/jpg/png/webp are rejected with errs.ErrUnsupportedMediaType.
	Put(ctx context.Context, up Upload) (string, error)

	// Delete removes the blob addressed by url. A missing blob yields
	// errs.ErrBlobNotFound, which callers treat as success (idempotent delete).
	Delete(ctx context.Context, url string) error
}

// New builds the ImageStore selected by STORAGE_BACKEND ("local" or "s3").
func New(ctx context.Context, c map[string]string, logger zerolog.Logger) (ImageStore, error) {
	backend := strings.ToLower(config.GetString(c, "STORAGE_BACKEND", "local"))
	switch backend {
	case "local":
		return NewLocalStore(
			config.GetString(c, "UPLOADS_DIR", "uploads/projects"),
			config.GetString(c, "UPLOADS_PUBLIC_PATH", "/uploads/projects"),
			config.GetInt64(c, "MAX_FILE_SIZE", DefaultMaxFileSize),
			logger,
		)
	case "s3":
		bucket := config.GetString(c, "S3_BUCKET", "")
		if bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
		region := config.GetString(c, "S3_REGION", "")
		if region == "" {
			return nil, fmt.Errorf("S3_REGION is required for the s3 storage backend")
		}
		return NewS3Store(ctx, S3Options{
			Bucket:    bucket,
			Region:    region,
			KeyPrefix: config.GetString(c, "S3_KEY_PREFIX", "projects"),
			BaseURL:   config.GetString(c, "S3_PUBLIC_BASE_URL", ""),
			BoundBox:  config.GetInt(c, "S3_TRANSFORM_BOUND", 1200),
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// AllowedTypes lists the accepted formats, for error messages.
func AllowedTypes() []string {
	return []string{"jpeg", "jpg", "png", "webp"}
}

// checkMediaType rejects uploads whose extension or declared content-type is
// not an accepted image format.
func checkMediaType(up Upload) error {
	ext := strings.ToLower(path.Ext(up.Filename))
	if !allowedExtensions[ext] {
		return &mediaTypeError{got: ext}
	}
	if up.ContentType != "" && !allowedContentTypes[strings.ToLower(up.ContentType)] {
		return &mediaTypeError{got: up.ContentType}
	}
	return nil
}

type mediaTypeError struct {
	got string
}

func (e *mediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q, allowed: %v", e.got, AllowedTypes())
}

func (e *mediaTypeError) Unwrap() error {
	return errs.ErrUnsupportedMediaType
}

// generateName builds a collision-resistant object name in the same shape the
// original uploader used: images-<unix ms>-<rand>.<ext>.
func generateName(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("images-%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
}

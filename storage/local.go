package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atelier-studio/atelier-backend/errs"
)

// LocalStore keeps blobs on the local filesystem under a directory that is
// served statically at publicPath. The directory is created lazily on the
// first write.
type LocalStore struct {
	baseDir    string
	publicPath string
	maxBytes   int64
	logger     zerolog.Logger
}

func NewLocalStore(baseDir, publicPath string, maxBytes int64, logger zerolog.Logger) (*LocalStore, error) {
	baseDir = filepath.Clean(baseDir)
	if baseDir == "" || baseDir == "." {
		return nil, fmt.Errorf("uploads directory cannot be empty")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileSize
	}
	return &LocalStore{
		baseDir:    baseDir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		maxBytes:   maxBytes,
		logger:     logger.With().Str("storage", "local").Logger(),
	}, nil
}

// BaseDir returns the directory blobs are written to, for static serving.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// PublicPath returns the URL prefix local blob URLs are rooted at.
func (s *LocalStore) PublicPath() string {
	return s.publicPath
}

func (s *LocalStore) Put(ctx context.Context, up Upload) (string, error) {
	if err := checkMediaType(up); err != nil {
		return "", err
	}
	// Size is checked before any byte is written.
	if up.Size > s.maxBytes {
		return "", fmt.Errorf("file %s is %d bytes, limit is %d: %w", up.Filename, up.Size, s.maxBytes, errs.ErrFileTooLarge)
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := generateName(up.Filename)
	fullPath := filepath.Join(s.baseDir, name)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, io.LimitReader(up.Reader, s.maxBytes+1))
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = fmt.Errorf("file %s exceeds limit of %d bytes: %w", up.Filename, s.maxBytes, errs.ErrFileTooLarge)
	}
	if err != nil {
		// Clean up the partial file so a failed write leaves nothing behind.
		if rmErr := os.Remove(fullPath); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", fullPath).Msg("failed to remove partial upload")
		}
		return "", err
	}

	return s.publicPath + "/" + name, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	name, ok := s.blobName(url)
	if !ok {
		return fmt.Errorf("url %q is not served by this store: %w", url, errs.ErrBlobNotFound)
	}

	fullPath := filepath.Join(s.baseDir, name)
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errs.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// blobName maps a public URL back to the stored object name, refusing
// anything outside this store's prefix or containing path separators.
func (s *LocalStore) blobName(url string) (string, bool) {
	if !strings.HasPrefix(url, s.publicPath+"/") {
		return "", false
	}
	name := strings.TrimPrefix(url, s.publicPath+"/")
	if name == "" || name != path.Base(name) {
		return "", false
	}
	return name, true
}

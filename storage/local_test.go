package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/atelier-studio/atelier-backend/errs"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "/uploads/projects", 1024, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	tests := []struct {
		name      string
		baseDir   string
		wantError bool
	}{
		{
			name:      "valid base directory",
			baseDir:   t.TempDir(),
			wantError: false,
		},
		{
			name:      "non-existent directory is accepted",
			baseDir:   filepath.Join(t.TempDir(), "new-dir"),
			wantError: false,
		},
		{
			name:      "empty base directory",
			baseDir:   "",
			wantError: true,
		},
		{
			name:      "dot as base directory",
			baseDir:   ".",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewLocalStore(tt.baseDir, "/uploads", 0, zerolog.Nop())
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("expected store but got nil")
			}
		})
	}
}

func TestLocalStore_Put(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("stores blob and returns public url", func(t *testing.T) {
		content := "fake image bytes"
		url, err := store.Put(ctx, Upload{
			Filename:    "photo.jpg",
			ContentType: "image/jpeg",
			Size:        int64(len(content)),
			Reader:      strings.NewReader(content),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(url, "/uploads/projects/images-") {
			t.Errorf("unexpected url shape: %q", url)
		}
		if !strings.HasSuffix(url, ".jpg") {
			t.Errorf("url should keep the original extension: %q", url)
		}

		name := strings.TrimPrefix(url, "/uploads/projects/")
		data, err := os.ReadFile(filepath.Join(store.BaseDir(), name))
		if err != nil {
			t.Fatalf("failed to read stored blob: %v", err)
		}
		if string(data) != content {
			t.Errorf("content mismatch: got %q, want %q", string(data), content)
		}
	})

	t.Run("creates uploads directory lazily", func(t *testing.T) {
		baseDir := filepath.Join(t.TempDir(), "not-yet")
		lazy, err := NewLocalStore(baseDir, "/uploads", 1024, zerolog.Nop())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		if _, err := os.Stat(baseDir); !os.IsNotExist(err) {
			t.Fatal("directory should not exist before the first write")
		}
		_, err = lazy.Put(ctx, Upload{
			Filename: "a.png",
			Size:     1,
			Reader:   strings.NewReader("x"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(baseDir); err != nil {
			t.Errorf("directory should exist after the first write: %v", err)
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		_, err := store.Put(ctx, Upload{
			Filename: "report.pdf",
			Size:     4,
			Reader:   strings.NewReader("data"),
		})
		if !errs.IsUnsupportedMediaType(err) {
			t.Errorf("expected unsupported media type error, got: %v", err)
		}
	})

	t.Run("rejects mismatched content type", func(t *testing.T) {
		_, err := store.Put(ctx, Upload{
			Filename:    "photo.jpg",
			ContentType: "application/octet-stream",
			Size:        4,
			Reader:      strings.NewReader("data"),
		})
		if !errs.IsUnsupportedMediaType(err) {
			t.Errorf("expected unsupported media type error, got: %v", err)
		}
	})

	t.Run("rejects oversized declared size", func(t *testing.T) {
		_, err := store.Put(ctx, Upload{
			Filename: "big.png",
			Size:     2048,
			Reader:   strings.NewReader("x"),
		})
		if !errs.IsFileTooLarge(err) {
			t.Errorf("expected file too large error, got: %v", err)
		}
	})

	t.Run("rejects stream longer than declared size", func(t *testing.T) {
		before, readErr := os.ReadDir(store.BaseDir())
		if readErr != nil {
			t.Fatalf("failed to list uploads dir: %v", readErr)
		}

		data := bytes.Repeat([]byte("x"), 2048)
		_, err := store.Put(ctx, Upload{
			Filename: "sneaky.png",
			Size:     10,
			Reader:   bytes.NewReader(data),
		})
		if !errs.IsFileTooLarge(err) {
			t.Errorf("expected file too large error, got: %v", err)
		}

		after, readErr := os.ReadDir(store.BaseDir())
		if readErr != nil {
			t.Fatalf("failed to list uploads dir: %v", readErr)
		}
		if len(after) != len(before) {
			t.Error("partial file should have been cleaned up")
		}
	})
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	url, err := store.Put(ctx, Upload{
		Filename: "photo.png",
		Size:     4,
		Reader:   strings.NewReader("data"),
	})
	if err != nil {
		t.Fatalf("failed to store blob: %v", err)
	}

	t.Run("deletes stored blob", func(t *testing.T) {
		if err := store.Delete(ctx, url); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		name := strings.TrimPrefix(url, "/uploads/projects/")
		if _, err := os.Stat(filepath.Join(store.BaseDir(), name)); !os.IsNotExist(err) {
			t.Error("blob should be gone after delete")
		}
	})

	t.Run("missing blob yields blob not found", func(t *testing.T) {
		err := store.Delete(ctx, url)
		if !errs.IsBlobNotFound(err) {
			t.Errorf("expected blob not found, got: %v", err)
		}
	})

	t.Run("foreign url is refused", func(t *testing.T) {
		err := store.Delete(ctx, "https://elsewhere.example/images-1.png")
		if !errs.IsBlobNotFound(err) {
			t.Errorf("expected blob not found, got: %v", err)
		}
	})

	t.Run("path traversal is refused", func(t *testing.T) {
		for _, url := range []string{
			"/uploads/projects/../secret.png",
			"/uploads/projects/a/../../secret.png",
			"/uploads/projects/",
		} {
			err := store.Delete(ctx, url)
			if !errs.IsBlobNotFound(err) {
				t.Errorf("url %q: expected blob not found, got: %v", url, err)
			}
		}
	})
}

func TestGenerateName(t *testing.T) {
	name := generateName("My Photo.JPG")
	if !strings.HasPrefix(name, "images-") {
		t.Errorf("name should carry the images- prefix: %q", name)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("name should keep a lowercased extension: %q", name)
	}

	other := generateName("My Photo.JPG")
	if name == other {
		t.Error("two generated names should not collide")
	}
}

package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Blob storage errors
var (
	ErrBlobNotFound         = errors.New("blob not found")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrBlobWrite            = errors.New("blob write failed")
)

func NewUnsupportedMediaTypeError(contentType string, allowedTypes []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrUnsupportedMediaType,
		Details:    fmt.Sprintf("Unsupported media type: %s. Allowed types: %v", contentType, allowedTypes),
		Field:      "images",
	}
}

func NewFileTooLargeError(filename string, maxBytes int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrFileTooLarge,
		Details:    fmt.Sprintf("File %s exceeds maximum allowed size of %d bytes", filename, maxBytes),
		Field:      "images",
	}
}

func NewBlobWriteError(filename string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrBlobWrite,
		Details:    fmt.Sprintf("Failed to store file %s", filename),
		Cause:      cause,
	}
}

func IsBlobNotFound(err error) bool {
	return errors.Is(err, ErrBlobNotFound)
}

func IsUnsupportedMediaType(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

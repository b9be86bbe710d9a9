package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApiErrSentinels(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("project")))
	assert.True(t, IsNotFound(fmt.Errorf("loading: %w", NewNotFound("project"))))
	assert.False(t, IsNotFound(NewAlreadyExists("project")))

	assert.True(t, IsMissingTokenError(NewMissingTokenError()))
	assert.True(t, IsExpiredTokenError(NewExpiredTokenError()))
	assert.True(t, IsInvalidTokenError(NewInvalidTokenError()))

	assert.True(t, IsBlobNotFound(ErrBlobNotFound))
	assert.True(t, IsUnsupportedMediaType(NewUnsupportedMediaTypeError("application/pdf", []string{"jpeg"})))
	assert.True(t, IsFileTooLarge(NewFileTooLargeError("big.png", 5<<20)))
}

func TestApiErrMessages(t *testing.T) {
	err := NewNotFound("project")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "project not found", err.Error())

	withDetails := NewUnsupportedMediaTypeError("text/plain", []string{"jpeg", "png"})
	assert.Contains(t, withDetails.Error(), "text/plain")
	assert.Equal(t, "images", withDetails.Field)
	assert.Equal(t, http.StatusBadRequest, withDetails.StatusCode)

	tooLarge := NewFileTooLargeError("big.png", 5<<20)
	assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.StatusCode)
}

func TestGetFullError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalErrorWithCause("failed to store blob", cause)

	full := err.GetFullError()
	assert.Contains(t, full, "failed to store blob")
	assert.Contains(t, full, "connection refused")
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
	}{
		{
			name:       "duplicate key maps to conflict",
			cause:      errors.New(`duplicate key value violates unique constraint "idx_projects_slug"`),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "sqlite unique constraint maps to conflict",
			cause:      errors.New("UNIQUE constraint failed: projects.slug"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "record not found maps to 404",
			cause:      errors.New("record not found"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "connection failure maps to 503",
			cause:      errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "anything else is a 500",
			cause:      errors.New("syntax error"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("create", "project", tt.cause)
			require.NotNil(t, err)
			assert.Equal(t, tt.wantStatus, err.StatusCode)
			assert.Equal(t, tt.cause, err.Cause)
		})
	}
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.False(t, ve.HasErrors())

	ve.Add("title", "is required").Add("year", "must be between 2000 and 2027")
	require.True(t, ve.HasErrors())
	assert.Len(t, ve.Fields, 2)
	assert.Equal(t, http.StatusBadRequest, ve.StatusCode)
	assert.Contains(t, ve.Error(), "title: is required")
	assert.Contains(t, ve.Error(), "year: must be between 2000 and 2027")
}

package errs

import (
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes a single invalid field in a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError batches every offending field of a payload into one error,
// so form-level UIs can surface all problems at once instead of the first.
type ValidationError struct {
	StatusCode int
	Fields     []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{
		StatusCode: http.StatusBadRequest,
		Fields:     fields,
	}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field-level issue and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field issue was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

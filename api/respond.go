package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/atelier-studio/atelier-backend/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus marshals before touching the response so an encoding
// failure can still produce a 500, and sets Content-Type ahead of the status
// line so it is never lost.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	// Validation failures carry every offending field at once.
	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		r.WriteJSONStatus(w, validationErr.StatusCode, map[string]interface{}{
			"error":   "Validation error",
			"message": validationErr.Error(),
			"errors":  validationErr.Fields,
			"status":  "error",
		})
		return
	}

	var apiErr *errs.ApiErr

	// For unexpected errors, log and return a generic internal error with no
	// internal detail leaked to the client.
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.WriteJSONStatus(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Internal Server Error",
			"message": "An unexpected error occurred",
			"status":  "error",
		})
		return
	}

	response := map[string]interface{}{
		"error":   apiErr.Error(),
		"message": apiErr.Error(),
		"status":  "error",
	}

	// Add field information if present (for validation errors)
	if apiErr.Field != "" {
		response["field"] = apiErr.Field
	}

	if apiErr.Details != "" {
		response["details"] = apiErr.Details
	}

	if apiErr.Cause != nil {
		r.logger.Error().Str("cause", apiErr.GetFullError()).Msg("request failed")
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}

// Package handlers provides HTTP response utilities for JSON APIs.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// FieldErrors is implemented by errors that carry per-field messages.
type FieldErrors interface {
	error
	Fields() map[string]string
}

// ErrorResponse is the JSON body written by RespondError.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes a JSON error response.
// Client errors are logged at warn level, server errors at error level.
// Errors implementing FieldErrors include their field messages in the body.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "error", err, "status", status)
	} else {
		logger.Warn("handler error", "error", err, "status", status)
	}

	body := ErrorResponse{Error: err.Error()}

	var fe FieldErrors
	if errors.As(err, &fe) {
		body.Fields = fe.Fields()
	}

	RespondJSON(w, status, body)
}

package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/webcarros/pkg/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fieldErr map[string]string

func (f fieldErr) Error() string             { return "validation failed" }
func (f fieldErr) Fields() map[string]string { return f }

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "1" {
		t.Errorf("id = %q, want 1", body["id"])
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		wantFields int
	}{
		{"plain", errors.New("boom"), http.StatusInternalServerError, 0},
		{"fields", fieldErr{"name": "required"}, http.StatusBadRequest, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondError(rec, testLogger(), tt.status, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.err.Error() {
				t.Errorf("error = %q, want %q", body.Error, tt.err.Error())
			}
			if len(body.Fields) != tt.wantFields {
				t.Errorf("len(fields) = %d, want %d", len(body.Fields), tt.wantFields)
			}
		})
	}
}

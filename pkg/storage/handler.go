package storage

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/webcarros/pkg/handlers"
)

// Handler serves stored blobs at a route carrying a {key...} wildcard.
// It backs the public URLs resolved by the filesystem and memory providers.
func Handler(sys System, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With("handler", "blobs")

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := sys.Retrieve(r.Context(), r.PathValue("key"))
		if err != nil {
			handlers.RespondError(w, logger, MapHTTPStatus(err), err)
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			w.Write(data)
		}
	}
}

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidKey):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

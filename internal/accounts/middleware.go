package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/webcarros/pkg/middleware"
)

// Middleware resolves the request token into a session and stores it in the
// request context. Requests without a valid token continue anonymously.
func Middleware(sys System, cookie Cookie, logger *slog.Logger) middleware.Middleware {
	logger = logger.With("middleware", "session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r, cookie.Name)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sys.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) {
					logger.Error("authenticate failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequestToken returns the bearer token, falling back to the named cookie.
func RequestToken(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

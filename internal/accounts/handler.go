package accounts

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/webcarros/pkg/handlers"
	"github.com/JaimeStill/webcarros/pkg/routes"
)

// Cookie describes the session cookie written on sign-in.
type Cookie struct {
	Name   string
	Secure bool
}

// Set writes the session token as an HTTP-only cookie expiring with the token.
func (c Cookie) Set(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    s.Token(),
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// Handler provides HTTP endpoints for account operations.
type Handler struct {
	sys    System
	logger *slog.Logger
	cookie Cookie
}

// NewHandler creates an account handler writing the given session cookie.
func NewHandler(sys System, logger *slog.Logger, cookie Cookie) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "accounts"),
		cookie: cookie,
	}
}

// Routes returns the account endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/auth",
		Description: "Registration, sign-in, and session management",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/register", Handler: h.Register},
			{Method: "POST", Pattern: "/login", Handler: h.Login},
			{Method: "POST", Pattern: "/logout", Handler: h.Logout},
			{Method: "GET", Pattern: "/me", Handler: h.Me},
		},
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := h.sys.Register(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.cookie.Set(w, session)
	handlers.RespondJSON(w, http.StatusCreated, SessionResponse{Session: session, Token: session.Token()})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	session, err := h.sys.SignIn(r.Context(), creds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.cookie.Set(w, session)
	handlers.RespondJSON(w, http.StatusOK, SessionResponse{Session: session, Token: session.Token()})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}

	if err := h.sys.SignOut(r.Context(), session.Token()); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, session)
}

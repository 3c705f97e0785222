package cars

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/pkg/handlers"
	"github.com/JaimeStill/webcarros/pkg/routes"
)

// Handler provides HTTP endpoints for listing operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a listing handler with the specified upload limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "cars"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the listing endpoint route groups.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix:      "/cars",
			Description: "Listing search, detail, creation, and deletion",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.List},
				{Method: "GET", Pattern: "/{id}", Handler: h.Find},
				{Method: "POST", Pattern: "", Handler: h.Create},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			},
		},
		{
			Prefix:      "/dashboard",
			Description: "Listings owned by the signed-in user",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/cars", Handler: h.ListOwned},
			},
		},
		{
			Prefix:      "/images",
			Description: "Image staging for the listing form",
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.UploadImage},
				{Method: "DELETE", Pattern: "/{name}", Handler: h.DeleteImage},
			},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.sys.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cars)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	car, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, car)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	LimitBody(w, r, h.maxUploadSize)
	cmd, err := ParseCreateCommand(r, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	car, err := h.sys.Create(r.Context(), session, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, car)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), session, r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	cars, err := h.sys.ListByOwner(r.Context(), session)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, cars)
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	LimitBody(w, r, h.maxUploadSize)
	upload, err := ParseUpload(r, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	img, err := h.sys.UploadImage(r.Context(), session, upload)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, img)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	img := Image{Name: r.PathValue("name"), UID: session.UID}
	if err := h.sys.DeleteImage(r.Context(), session, img); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*accounts.Session, bool) {
	session, ok := accounts.SessionFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, accounts.ErrUnauthenticated)
		return nil, false
	}
	return session, true
}

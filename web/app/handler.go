package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/cars"
	"github.com/JaimeStill/webcarros/pkg/handlers"
	"github.com/JaimeStill/webcarros/pkg/web"
)

const (
	msgLoginFailed    = "Email ou senha inválidos"
	msgEmailTaken     = "Este email já está cadastrado"
	msgTryAgain       = "Não foi possível concluir a operação. Tente novamente."
	msgMalformedForm  = "Não foi possível ler o formulário enviado"
	msgImageTooLarge  = "A imagem excede o tamanho máximo permitido"
	msgCarUnavailable = "Não foi possível carregar os carros agora"
)

type handler struct {
	templates     *web.TemplateSet
	cars          cars.System
	accounts      accounts.System
	cookie        accounts.Cookie
	maxUploadSize int64
	logger        *slog.Logger
}

func newHandler(ts *web.TemplateSet, cfg Config, logger *slog.Logger) *handler {
	return &handler{
		templates:     ts,
		cars:          cfg.Cars,
		accounts:      cfg.Accounts,
		cookie:        cfg.Cookie,
		maxUploadSize: cfg.MaxUploadSize,
		logger:        logger.With("handler", "app"),
	}
}

func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	list, err := h.cars.SearchByName(r.Context(), q)
	if err != nil {
		h.logger.Error("search failed", "query", q, "error", err)
		h.render(w, r, http.StatusBadGateway, homePage, web.PageData{
			Flash: msgCarUnavailable,
			Form:  map[string]string{"q": q},
		})
		return
	}

	h.render(w, r, http.StatusOK, homePage, web.PageData{
		Form: map[string]string{"q": q},
		Data: list,
	})
}

func (h *handler) car(w http.ResponseWriter, r *http.Request) {
	car, err := h.cars.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, cars.MapHTTPStatus(err), err)
		return
	}

	h.render(w, r, http.StatusOK, carPage, web.PageData{Title: car.Name, Data: car})
}

func (h *handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := accounts.SessionFrom(r.Context()); ok {
		h.redirect(w, r, "/dashboard")
		return
	}
	h.render(w, r, http.StatusOK, loginPage, web.PageData{})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, loginPage, web.PageData{Flash: msgMalformedForm})
		return
	}

	creds := accounts.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	session, err := h.accounts.SignIn(r.Context(), creds)
	if err != nil {
		data := web.PageData{Form: map[string]string{"email": creds.Email}}
		status := accounts.MapHTTPStatus(err)
		h.formError(&data, status, err, msgLoginFailed)
		h.render(w, r, status, loginPage, data)
		return
	}

	h.cookie.Set(w, session)
	h.redirect(w, r, "/dashboard")
}

func (h *handler) registerForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := accounts.SessionFrom(r.Context()); ok {
		h.redirect(w, r, "/dashboard")
		return
	}
	h.render(w, r, http.StatusOK, registerPage, web.PageData{})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, registerPage, web.PageData{Flash: msgMalformedForm})
		return
	}

	cmd := accounts.RegisterCommand{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	session, err := h.accounts.Register(r.Context(), cmd)
	if err != nil {
		data := web.PageData{Form: map[string]string{"name": cmd.Name, "email": cmd.Email}}
		status := accounts.MapHTTPStatus(err)
		h.formError(&data, status, err, msgEmailTaken)
		h.render(w, r, status, registerPage, data)
		return
	}

	h.cookie.Set(w, session)
	h.redirect(w, r, "/dashboard")
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := accounts.RequestToken(r, h.cookie.Name); token != "" {
		if err := h.accounts.SignOut(r.Context(), token); err != nil && !errors.Is(err, accounts.ErrInvalidToken) {
			h.logger.Warn("sign out failed", "error", err)
		}
	}

	h.cookie.Clear(w)
	h.redirect(w, r, "/login")
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	list, err := h.cars.ListByOwner(r.Context(), session)
	if err != nil {
		h.fail(w, r, cars.MapHTTPStatus(err), err)
		return
	}

	h.render(w, r, http.StatusOK, dashboardPage, web.PageData{Data: list})
}

func (h *handler) newCarForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}

	h.render(w, r, http.StatusOK, newCarPage, web.PageData{
		Form: map[string]string{"submissionKey": uuid.NewString()},
	})
}

func (h *handler) newCar(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	cars.LimitBody(w, r, h.maxUploadSize)
	cmd, err := cars.ParseCreateCommand(r, h.maxUploadSize)
	if err == nil {
		_, err = h.cars.Create(r.Context(), session, cmd)
	}
	if err != nil {
		data := web.PageData{Form: formValues(cmd.Form)}
		if data.Form["submissionKey"] == "" {
			data.Form["submissionKey"] = uuid.NewString()
		}

		status := cars.MapHTTPStatus(err)
		switch {
		case errors.Is(err, cars.ErrImageTooLarge):
			data.Errors = map[string]string{"images": msgImageTooLarge}
		case errors.Is(err, cars.ErrMalformedRequest):
			data.Flash = msgMalformedForm
		default:
			h.formError(&data, status, err, msgTryAgain)
		}
		h.render(w, r, status, newCarPage, data)
		return
	}

	h.redirect(w, r, "/dashboard")
}

func (h *handler) deleteCar(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.cars.Delete(r.Context(), session, r.PathValue("id")); err != nil {
		h.fail(w, r, cars.MapHTTPStatus(err), err)
		return
	}

	h.redirect(w, r, "/dashboard")
}

// session returns the signed-in user or redirects to the login page.
func (h *handler) session(w http.ResponseWriter, r *http.Request) (*accounts.Session, bool) {
	session, ok := accounts.SessionFrom(r.Context())
	if !ok {
		h.redirect(w, r, "/login")
		return nil, false
	}
	return session, true
}

// formError fills field messages when err carries them, otherwise a flash.
// Client errors show msg; server errors are logged and show a generic message.
func (h *handler) formError(data *web.PageData, status int, err error, msg string) {
	var fe handlers.FieldErrors
	if errors.As(err, &fe) {
		data.Errors = fe.Fields()
		return
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("form submission failed", "error", err, "status", status)
		data.Flash = msgTryAgain
		return
	}
	data.Flash = msg
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status == http.StatusNotFound {
		h.render(w, r, status, errorPages[0], web.PageData{})
		return
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("page error", "path", r.URL.Path, "error", err, "status", status)
	} else {
		h.logger.Warn("page error", "path", r.URL.Path, "error", err, "status", status)
	}
	h.render(w, r, status, errorPages[1], web.PageData{Flash: http.StatusText(status)})
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, page web.PageDef, data web.PageData) {
	if data.Title == "" {
		data.Title = page.Title
	}
	if session, ok := accounts.SessionFrom(r.Context()); ok {
		data.User = session
	}

	if err := h.templates.Render(w, status, layout, page.Template, data); err != nil {
		h.logger.Error("render failed", "template", page.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *handler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.templates.BasePath()+path, http.StatusSeeOther)
}

func formValues(f cars.Form) map[string]string {
	return map[string]string{
		"name":          f.Name,
		"model":         f.Model,
		"year":          f.Year,
		"km":            f.KM,
		"price":         string(f.Price),
		"city":          f.City,
		"whatsapp":      f.Whatsapp,
		"description":   f.Description,
		"submissionKey": f.SubmissionKey,
	}
}

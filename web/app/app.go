// Package app provides the server-rendered marketplace pages with embedded
// templates and assets.
package app

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/cars"
	"github.com/JaimeStill/webcarros/pkg/middleware"
	"github.com/JaimeStill/webcarros/pkg/module"
	"github.com/JaimeStill/webcarros/pkg/web"
)

//go:embed server/layouts/*
var layoutFS embed.FS

//go:embed server/pages/*
var pageFS embed.FS

//go:embed static/*
var staticFS embed.FS

const layout = "app.html"

var (
	homePage      = web.PageDef{Route: "/{$}", Template: "home.html", Title: "Carros à venda"}
	carPage       = web.PageDef{Route: "/car/{id}", Template: "car.html", Title: "Detalhes"}
	loginPage     = web.PageDef{Route: "/login", Template: "login.html", Title: "Entrar"}
	registerPage  = web.PageDef{Route: "/register", Template: "register.html", Title: "Criar conta"}
	dashboardPage = web.PageDef{Route: "/dashboard", Template: "dashboard.html", Title: "Meus carros"}
	newCarPage    = web.PageDef{Route: "/dashboard/new", Template: "new.html", Title: "Novo carro"}
)

var pages = []web.PageDef{homePage, carPage, loginPage, registerPage, dashboardPage, newCarPage}

var errorPages = []web.PageDef{
	{Template: "404.html", Title: "Página não encontrada"},
	{Template: "error.html", Title: "Algo deu errado"},
}

var funcs = template.FuncMap{
	"cover": func(images []cars.Image) string {
		if len(images) == 0 {
			return ""
		}
		return images[0].URL
	},
	"whatsapp": func(number string) string {
		return "https://api.whatsapp.com/send?phone=" + number
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
}

// Config contains the systems and limits the pages depend on.
type Config struct {
	Cars          cars.System
	Accounts      accounts.System
	Cookie        accounts.Cookie
	MaxUploadSize int64
}

// NewModule creates the app module configured for the given base path.
// Sessions are resolved from the cookie before any page handler runs.
func NewModule(basePath string, cfg Config, logger *slog.Logger) (*module.Module, error) {
	allPages := append(pages, errorPages...)
	ts, err := web.NewTemplateSet(
		layoutFS,
		pageFS,
		"server/layouts/*.html",
		"server/pages",
		basePath,
		allPages,
		funcs,
	)
	if err != nil {
		return nil, err
	}

	h := newHandler(ts, cfg, logger)

	m := module.New(basePath, h.router())
	m.Use(middleware.TrimSlash())
	m.Use(accounts.Middleware(cfg.Accounts, cfg.Cookie, logger))
	return m, nil
}

func (h *handler) router() http.Handler {
	r := web.NewRouter()
	r.SetFallback(h.templates.ErrorHandler(layout, errorPages[0], http.StatusNotFound))

	r.HandleFunc("GET "+homePage.Route, h.home)
	r.HandleFunc("GET "+carPage.Route, h.car)
	r.HandleFunc("GET "+loginPage.Route, h.loginForm)
	r.HandleFunc("POST "+loginPage.Route, h.login)
	r.HandleFunc("GET "+registerPage.Route, h.registerForm)
	r.HandleFunc("POST "+registerPage.Route, h.register)
	r.HandleFunc("POST /logout", h.logout)
	r.HandleFunc("GET "+dashboardPage.Route, h.dashboard)
	r.HandleFunc("GET "+newCarPage.Route, h.newCarForm)
	r.HandleFunc("POST "+newCarPage.Route, h.newCar)
	r.HandleFunc("POST /dashboard/cars/{id}/delete", h.deleteCar)

	r.Handle("GET /static/", http.FileServer(http.FS(staticFS)))

	return r
}

// Package api assembles the JSON API module from the domain systems.
package api

import (
	"net/http"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/pkg/middleware"
	"github.com/JaimeStill/webcarros/pkg/module"
)

// BasePath is the prefix the API module is mounted at.
const BasePath = "/api"

// NewModule creates the API module. Requests carrying a bearer token or
// session cookie are authenticated before reaching the handlers.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain)

	m := module.New(BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(accounts.Middleware(domain.Accounts, runtime.Cookie, runtime.Logger))

	return m
}

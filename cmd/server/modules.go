package main

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/webcarros/internal/api"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/infrastructure"
	"github.com/JaimeStill/webcarros/pkg/middleware"
	"github.com/JaimeStill/webcarros/pkg/module"
	"github.com/JaimeStill/webcarros/pkg/storage"
	"github.com/JaimeStill/webcarros/web/app"
)

// Modules holds the mounted HTTP modules and the domain they share.
type Modules struct {
	API *module.Module
	App *module.Module

	runtime *api.Runtime
	domain  *api.Domain
	cfg     *config.Config
}

// NewModules builds the domain systems once and mounts them behind both the
// JSON API and the server-rendered pages.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime, cfg)

	apiModule := api.NewModule(cfg, runtime, domain)

	appModule, err := app.NewModule("/", app.Config{
		Cars:          domain.Cars,
		Accounts:      domain.Accounts,
		Cookie:        runtime.Cookie,
		MaxUploadSize: runtime.MaxUploadSize,
	}, infra.Logger.With("module", "app"))
	if err != nil {
		return nil, err
	}
	appModule.Use(middleware.Recover(infra.Logger))
	appModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:     apiModule,
		App:     appModule,
		runtime: runtime,
		domain:  domain,
		cfg:     cfg,
	}, nil
}

// Start registers background domain work with the lifecycle.
func (m *Modules) Start() error {
	return m.domain.Start(m.runtime, m.cfg)
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	if cfg.Storage.Provider != storage.ProviderS3 && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		router.HandleNative("GET "+cfg.Storage.PublicURL+"/{key...}", storage.Handler(infra.Storage, infra.Logger))
	}

	return router
}

package api

import (
	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Cookie        accounts.Cookie
	MaxUploadSize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Docs:      infra.Docs,
			Accounts:  infra.Accounts,
			Storage:   infra.Storage,
		},
		Cookie: accounts.Cookie{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		},
		MaxUploadSize: cfg.Storage.MaxUploadSizeBytes(),
	}
}

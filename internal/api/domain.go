package api

import (
	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/cars"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/orphans"
)

// Domain holds all domain systems that comprise the API.
// The web pages share the same instances.
type Domain struct {
	Accounts accounts.System
	Cars     cars.System
	Orphans  orphans.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	accountsSys := accounts.New(
		runtime.Accounts,
		accounts.Config{
			Secret:   []byte(cfg.Auth.Secret),
			Issuer:   cfg.Auth.Issuer,
			TokenTTL: cfg.Auth.TokenTTLDuration(),
		},
		runtime.Logger,
	)

	orphansSys := orphans.New(
		runtime.Docs,
		runtime.Storage,
		cfg.Orphans.IntervalDuration(),
		cfg.Orphans.MaxAttempts,
		runtime.Logger,
	)

	carsSys := cars.New(
		runtime.Docs,
		runtime.Storage,
		orphansSys,
		cfg.Cars.UploadConcurrency,
		runtime.Logger,
	)

	return &Domain{
		Accounts: accountsSys,
		Cars:     carsSys,
		Orphans:  orphansSys,
	}
}

// Start registers background domain work with the lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime, cfg *config.Config) error {
	if !cfg.Orphans.IsEnabled() {
		runtime.Logger.Info("orphan reconciliation disabled")
		return nil
	}
	return d.Orphans.Start(runtime.Lifecycle)
}

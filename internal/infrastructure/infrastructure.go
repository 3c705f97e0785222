// Package infrastructure provides core service initialization for application startup.
// It assembles the backend handles (logging, database, document store, identity
// store, blob storage) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/migrations"
	"github.com/JaimeStill/webcarros/pkg/database"
	"github.com/JaimeStill/webcarros/pkg/docstore"
	"github.com/JaimeStill/webcarros/pkg/lifecycle"
	"github.com/JaimeStill/webcarros/pkg/logging"
	"github.com/JaimeStill/webcarros/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when the memory backend is selected.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Docs      docstore.Store
	Accounts  accounts.Store
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
	}

	switch cfg.Backend.Provider {
	case config.BackendPostgres:
		db, err := database.New(&cfg.Database, migrations.FS, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Docs = docstore.NewPostgres(db.Connection(), time.Now)
		infra.Accounts = accounts.NewPostgresStore(db.Connection())
	case config.BackendMemory:
		infra.Docs = docstore.NewMemory(time.Now)
		infra.Accounts = accounts.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend provider %q", cfg.Backend.Provider)
	}

	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = store

	logger.Info(
		"backend initialized",
		"provider", cfg.Backend.Provider,
		"storage", cfg.Storage.Provider,
	)

	return infra, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

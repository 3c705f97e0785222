package config

import (
	"fmt"
	"os"
)

// Document backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const EnvBackendProvider = "BACKEND_PROVIDER"

// BackendConfig selects the document and account store.
// The memory backend needs no database and loses state on exit.
type BackendConfig struct {
	Provider string `toml:"provider"`
}

// UsesDatabase reports whether the backend requires a PostgreSQL connection.
func (c *BackendConfig) UsesDatabase() bool {
	return c.Provider == BackendPostgres
}

func (c *BackendConfig) Finalize() error {
	if c.Provider == "" {
		c.Provider = BackendPostgres
	}
	if v := os.Getenv(EnvBackendProvider); v != "" {
		c.Provider = v
	}

	switch c.Provider {
	case BackendPostgres, BackendMemory:
		return nil
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
}

func (c *BackendConfig) Merge(overlay *BackendConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
}

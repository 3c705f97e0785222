package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/webcarros/pkg/lifecycle"
)

// System defines the storage operations interface for blob storage.
// Implementations handle the underlying storage mechanism (filesystem, object store, memory)
// while providing a consistent API for storing and retrieving binary data.
type System interface {
	// Store saves data at the specified key with the given content type.
	// If the key already exists, its contents are overwritten.
	// Returns ErrInvalidKey if the key is empty or contains path traversal.
	Store(ctx context.Context, key string, data []byte, contentType string) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete deletes the data at the specified key.
	// Returns nil if the key does not exist (idempotent).
	Delete(ctx context.Context, key string) error

	// Validate checks if a key exists and is accessible.
	// Returns (false, nil) if the key does not exist.
	Validate(ctx context.Context, key string) (bool, error)

	// URL resolves the retrieval URL for a stored key.
	URL(ctx context.Context, key string) (string, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the storage system selected by cfg.Provider.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderFilesystem:
		return NewFilesystem(cfg, logger)
	case ProviderS3:
		return NewS3(ctx, cfg, logger)
	case ProviderMemory:
		return NewMemory(cfg.PublicURL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}

// cleanKey normalizes a slash-separated key and rejects keys that escape the root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.HasPrefix(cleaned, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return base + "/" + key
}

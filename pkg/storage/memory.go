package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JaimeStill/webcarros/pkg/lifecycle"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

type memory struct {
	mu        sync.RWMutex
	blobs     map[string]memoryBlob
	publicURL string
	logger    *slog.Logger
}

// NewMemory creates a process-local storage system. Contents are lost on exit.
func NewMemory(publicURL string, logger *slog.Logger) System {
	return &memory{
		blobs:     make(map[string]memoryBlob),
		publicURL: publicURL,
		logger:    logger.With("system", "storage", "provider", ProviderMemory),
	}
}

func (m *memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("starting storage system")
	return nil
}

func (m *memory) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[cleaned] = memoryBlob{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (m *memory) Retrieve(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[cleaned]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), blob.data...), nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, cleaned)
	return nil
}

func (m *memory) Validate(ctx context.Context, key string) (bool, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[cleaned]
	return ok, nil
}

func (m *memory) URL(ctx context.Context, key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return joinURL(m.publicURL, cleaned), nil
}

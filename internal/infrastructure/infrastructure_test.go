package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/infrastructure"
	"github.com/JaimeStill/webcarros/pkg/docstore"
	"github.com/JaimeStill/webcarros/pkg/storage"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Backend: config.BackendConfig{Provider: config.BackendMemory},
		Storage: storage.Config{Provider: storage.ProviderMemory},
		Auth:    config.AuthConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Database != nil {
		t.Error("Database should be nil for the memory backend")
	}
	if infra.Docs == nil || infra.Accounts == nil || infra.Storage == nil {
		t.Fatalf("Infrastructure = %+v, want every backend handle", infra)
	}

	ctx := context.Background()
	id, err := infra.Docs.Add(ctx, "cars", docstore.Fields{"name": "ONIX"})
	if err != nil {
		t.Fatalf("Docs.Add() error = %v", err)
	}
	if _, err := infra.Docs.Get(ctx, "cars", id); err != nil {
		t.Errorf("Docs.Get() error = %v", err)
	}
}

func TestStart_Shutdown(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	infra.Lifecycle.WaitForStartup()

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Backend.Provider = "mongo"

	if _, err := infrastructure.New(context.Background(), cfg); err == nil {
		t.Error("New() succeeded, want error")
	}
}

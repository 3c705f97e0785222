package config

import (
	"testing"
	"time"

	"github.com/JaimeStill/webcarros/pkg/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{Secret: testSecret}}
	cfg.Database.Name = "webcarros"
	cfg.Database.User = "webcarros"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeoutDuration() = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Backend.Provider != BackendPostgres {
		t.Errorf("Backend.Provider = %q, want %q", cfg.Backend.Provider, BackendPostgres)
	}
	if cfg.Storage.Provider != storage.ProviderFilesystem {
		t.Errorf("Storage.Provider = %q, want %q", cfg.Storage.Provider, storage.ProviderFilesystem)
	}
	if cfg.Auth.TokenTTLDuration() != 24*time.Hour {
		t.Errorf("TokenTTLDuration() = %v, want 24h", cfg.Auth.TokenTTLDuration())
	}
	if cfg.Cars.UploadConcurrency != 4 {
		t.Errorf("UploadConcurrency = %d, want 4", cfg.Cars.UploadConcurrency)
	}
	if !cfg.Orphans.IsEnabled() || cfg.Orphans.IntervalDuration() != 5*time.Minute {
		t.Errorf("Orphans = %+v", cfg.Orphans)
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv(EnvServerPort, "9090")
	t.Setenv(EnvBackendProvider, BackendMemory)
	t.Setenv(EnvAuthSecret, testSecret)
	t.Setenv(EnvOrphansEnabled, "false")
	t.Setenv("STORAGE_PROVIDER", storage.ProviderMemory)

	cfg := &Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Backend.UsesDatabase() {
		t.Error("UsesDatabase() = true, want false")
	}
	if cfg.Orphans.IsEnabled() {
		t.Error("Orphans.IsEnabled() = true, want false")
	}
	if cfg.Storage.Provider != storage.ProviderMemory {
		t.Errorf("Storage.Provider = %q, want memory", cfg.Storage.Provider)
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	memory := BackendConfig{Provider: BackendMemory}
	auth := AuthConfig{Secret: testSecret}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing secret", Config{Backend: memory}},
		{"short secret", Config{Backend: memory, Auth: AuthConfig{Secret: "short"}}},
		{"bad shutdown timeout", Config{ShutdownTimeout: "forever", Backend: memory, Auth: auth}},
		{"bad port", Config{Server: ServerConfig{Port: 70000}, Backend: memory, Auth: auth}},
		{"unknown backend", Config{Backend: BackendConfig{Provider: "mongo"}, Auth: auth}},
		{"postgres without database name", Config{Auth: auth}},
		{"negative concurrency", Config{Cars: CarsConfig{UploadConcurrency: -1}, Backend: memory, Auth: auth}},
		{"bad orphan interval", Config{Orphans: OrphansConfig{Interval: "0s"}, Backend: memory, Auth: auth}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	base, err := parse([]byte(`
version = "1.0.0"

[server]
port = 8080

[auth]
secret = "` + testSecret + `"
token_ttl = "24h"

[storage]
provider = "filesystem"
`))
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	overlay, err := parse([]byte(`
[server]
port = 3000

[auth]
token_ttl = "1h"

[storage]
provider = "s3"

[storage.s3]
bucket = "webcarros"
`))
	if err != nil {
		t.Fatalf("parse() error = %v", err)
	}

	base.Merge(overlay)

	if base.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", base.Version)
	}
	if base.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", base.Server.Port)
	}
	if base.Auth.Secret != testSecret || base.Auth.TokenTTL != "1h" {
		t.Errorf("Auth = %+v", base.Auth)
	}
	if base.Storage.Provider != storage.ProviderS3 || base.Storage.S3.Bucket != "webcarros" {
		t.Errorf("Storage = %+v", base.Storage)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := parse([]byte("[server\nport = ")); err == nil {
		t.Error("parse() succeeded, want error")
	}
}

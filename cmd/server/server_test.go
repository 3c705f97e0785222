package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/config"
	"github.com/JaimeStill/webcarros/internal/infrastructure"
	"github.com/JaimeStill/webcarros/pkg/logging"
	"github.com/JaimeStill/webcarros/pkg/module"
	"github.com/JaimeStill/webcarros/pkg/storage"
)

func newTestRouter(t *testing.T) (*module.Router, *infrastructure.Infrastructure) {
	t.Helper()

	cfg := &config.Config{
		Backend: config.BackendConfig{Provider: config.BackendMemory},
		Storage: storage.Config{Provider: storage.ProviderMemory},
		Auth:    config.AuthConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	infra.Logger = logging.Discard()

	modules, err := NewModules(infra, cfg)
	if err != nil {
		t.Fatalf("NewModules() error = %v", err)
	}

	router := buildRouter(infra, cfg)
	modules.Mount(router)
	return router, infra
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Probes(t *testing.T) {
	router, infra := newTestRouter(t)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup = %d, want 503", rec.Code)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	infra.Lifecycle.WaitForStartup()
	t.Cleanup(func() { infra.Lifecycle.Shutdown(time.Second) })

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readyz after startup = %d, want 200", rec.Code)
	}
}

func TestRouter_APISession(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Maria Souza","email":"maria@example.com","password":"segredo123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var resp accounts.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("register returned no token")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", rec.Code)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/dashboard/cars", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous dashboard status = %d, want 401", rec.Code)
	}
}

func TestRouter_ModulesAndBlobs(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"api listings", "/api/cars", http.StatusOK},
		{"home page", "/", http.StatusOK},
		{"login page", "/login", http.StatusOK},
		{"missing page", "/nowhere", http.StatusNotFound},
		{"missing blob", "/blobs/images/u1/a1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
			}
		})
	}
}

package storage

import (
	"testing"
	"time"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Provider != ProviderFilesystem {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderFilesystem)
	}
	if cfg.PublicURL != "/blobs" {
		t.Errorf("PublicURL = %q, want /blobs", cfg.PublicURL)
	}
	if cfg.MaxUploadSizeBytes() != 10_000_000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 10000000", cfg.MaxUploadSizeBytes())
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_STORAGE_PROVIDER", "s3")
	t.Setenv("TEST_STORAGE_BUCKET", "listing-photos")

	cfg := &Config{}
	env := &Env{Provider: "TEST_STORAGE_PROVIDER", S3Bucket: "TEST_STORAGE_BUCKET"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Provider != ProviderS3 || cfg.S3.Bucket != "listing-photos" {
		t.Errorf("Provider = %q, Bucket = %q", cfg.Provider, cfg.S3.Bucket)
	}
	if cfg.PublicURL != "" {
		t.Errorf("PublicURL = %q, want empty for presigned URLs", cfg.PublicURL)
	}
	if cfg.S3.PresignTTLDuration() != 15*time.Minute {
		t.Errorf("PresignTTLDuration() = %v, want 15m", cfg.S3.PresignTTLDuration())
	}
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown provider", Config{Provider: "ftp"}},
		{"s3 without bucket", Config{Provider: ProviderS3}},
		{"bad presign ttl", Config{Provider: ProviderS3, S3: S3Config{Bucket: "b", PresignTTL: "soon"}}},
		{"bad upload size", Config{MaxUploadSize: "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &Config{Provider: ProviderFilesystem, MaxUploadSize: "10MB"}
	cfg.Merge(&Config{
		Provider:      ProviderS3,
		MaxUploadSize: "5MB",
		S3:            S3Config{Bucket: "b", UsePathStyle: true},
	})

	if cfg.Provider != ProviderS3 || cfg.MaxUploadSize != "5MB" {
		t.Errorf("Provider = %q, MaxUploadSize = %q", cfg.Provider, cfg.MaxUploadSize)
	}
	if cfg.S3.Bucket != "b" || !cfg.S3.UsePathStyle {
		t.Errorf("S3 = %+v", cfg.S3)
	}
}

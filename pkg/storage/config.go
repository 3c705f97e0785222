package storage

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// Supported blob storage providers.
const (
	ProviderFilesystem = "filesystem"
	ProviderS3         = "s3"
	ProviderMemory     = "memory"
)

// Config contains blob storage configuration.
type Config struct {
	// Provider selects the backend: filesystem, s3, or memory.
	// Default: "filesystem"
	Provider string `toml:"provider"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// PublicURL prefixes keys to build retrieval URLs. For the s3 provider an
	// empty value switches to presigned GET URLs.
	// Default: "/blobs" (filesystem and memory)
	PublicURL string `toml:"public_url"`

	MaxUploadSize    string   `toml:"max_upload_size"`
	S3               S3Config `toml:"s3"`
	maxUploadSizeVal int64
}

// S3Config configures an S3-compatible object store.
type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
	PresignTTL   string `toml:"presign_ttl"`
	presignTTL   time.Duration
}

// Env maps storage settings to environment variable names.
type Env struct {
	Provider      string
	BasePath      string
	PublicURL     string
	MaxUploadSize string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// PresignTTLDuration returns the parsed lifetime of presigned URLs.
func (c *S3Config) PresignTTLDuration() time.Duration {
	return c.presignTTL
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	c.S3.merge(&overlay.S3)
}

func (c *S3Config) merge(overlay *S3Config) {
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.AccessKey != "" {
		c.AccessKey = overlay.AccessKey
	}
	if overlay.SecretKey != "" {
		c.SecretKey = overlay.SecretKey
	}
	if overlay.UsePathStyle {
		c.UsePathStyle = true
	}
	if overlay.PresignTTL != "" {
		c.PresignTTL = overlay.PresignTTL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.PublicURL == "" && c.Provider != ProviderS3 {
		c.PublicURL = "/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.S3.PresignTTL == "" {
		c.S3.PresignTTL = "15m"
	}
}

func (c *Config) loadEnv(env *Env) {
	overrides := []struct {
		name   string
		target *string
	}{
		{env.Provider, &c.Provider},
		{env.BasePath, &c.BasePath},
		{env.PublicURL, &c.PublicURL},
		{env.MaxUploadSize, &c.MaxUploadSize},
		{env.S3Bucket, &c.S3.Bucket},
		{env.S3Region, &c.S3.Region},
		{env.S3Endpoint, &c.S3.Endpoint},
		{env.S3AccessKey, &c.S3.AccessKey},
		{env.S3SecretKey, &c.S3.SecretKey},
	}

	for _, o := range overrides {
		if o.name == "" {
			continue
		}
		if v := os.Getenv(o.name); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) validate() error {
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")

	switch c.Provider {
	case ProviderFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case ProviderS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket required")
		}
		ttl, err := time.ParseDuration(c.S3.PresignTTL)
		if err != nil {
			return fmt.Errorf("invalid s3.presign_ttl: %w", err)
		}
		if ttl <= 0 {
			return fmt.Errorf("s3.presign_ttl must be positive")
		}
		c.S3.presignTTL = ttl
	case ProviderMemory:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}

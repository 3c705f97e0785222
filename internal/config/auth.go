package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvAuthSecret       = "AUTH_SECRET"
	EnvAuthTokenTTL     = "AUTH_TOKEN_TTL"
	EnvAuthCookieName   = "AUTH_COOKIE_NAME"
	EnvAuthCookieSecure = "AUTH_COOKIE_SECURE"
)

// AuthConfig contains session token configuration.
type AuthConfig struct {
	// Secret signs session tokens (HS256). Required, at least 32 bytes.
	Secret       string `toml:"secret"`
	TokenTTL     string `toml:"token_ttl"`
	CookieName   string `toml:"cookie_name"`
	CookieSecure bool   `toml:"cookie_secure"`
	Issuer       string `toml:"issuer"`
}

func (c *AuthConfig) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

func (c *AuthConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.CookieSecure {
		c.CookieSecure = true
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
}

func (c *AuthConfig) loadDefaults() {
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.CookieName == "" {
		c.CookieName = "webcarros_session"
	}
	if c.Issuer == "" {
		c.Issuer = "webcarros"
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthSecret); v != "" {
		c.Secret = v
	}
	if v := os.Getenv(EnvAuthTokenTTL); v != "" {
		c.TokenTTL = v
	}
	if v := os.Getenv(EnvAuthCookieName); v != "" {
		c.CookieName = v
	}
	if v := os.Getenv(EnvAuthCookieSecure); v == "true" {
		c.CookieSecure = true
	}
}

func (c *AuthConfig) validate() error {
	if len(c.Secret) < 32 {
		return fmt.Errorf("secret must be at least 32 bytes")
	}
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	return nil
}

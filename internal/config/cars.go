package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvCarsUploadConcurrency = "CARS_UPLOAD_CONCURRENCY"

// CarsConfig tunes the listing workflows.
type CarsConfig struct {
	// UploadConcurrency bounds parallel image uploads within one listing creation.
	// Default: 4
	UploadConcurrency int `toml:"upload_concurrency"`
}

func (c *CarsConfig) Finalize() error {
	if c.UploadConcurrency == 0 {
		c.UploadConcurrency = 4
	}
	if v := os.Getenv(EnvCarsUploadConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UploadConcurrency = n
		}
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("upload_concurrency must be positive")
	}
	return nil
}

func (c *CarsConfig) Merge(overlay *CarsConfig) {
	if overlay.UploadConcurrency != 0 {
		c.UploadConcurrency = overlay.UploadConcurrency
	}
}

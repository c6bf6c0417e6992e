package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv applies environment variable overrides. Unset variables keep the
// current value.
//
//	PORT, ENVIRONMENT, LOG_LEVEL
//	SITE_ROOT, CONTENT_ROOT, ASSETS_ROOT, PLUGINS_ROOT, SITE_CONFIG
//	MEDIA_URL, ASSETS_URL, URL_STRATEGY, CDN_BASE_URL, CDN_VERSION, API_BASE_URL
//	DATABASE_URL - "memory", "postgres://..." or "redis://..."
//	DB_SCHEMA, AUTO_MIGRATE, REDIS_PREFIX
//	API_KEY_SHA256, JWT_SECRET, EVENT_LOGGING
//	S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, ...
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML config file. Environment variables still take
// precedence over values from the file.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithDotEnv loads .env files into the process environment. Missing files
// are skipped. It does not touch the config itself; combine it with WithEnv.
func WithDotEnv(paths ...string) Option {
	return func(c *ServerConfig) error {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		for _, p := range paths {
			if err := godotenv.Load(p); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return fmt.Errorf("failed to load %s: %w", p, err)
			}
		}
		return nil
	}
}

// Package config loads server and site configuration and builds the App
// from it.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Database kinds derived from ServerConfig.DatabaseURL.
const (
	DatabaseMemory   = "memory"
	DatabasePostgres = "postgres"
	DatabaseRedis    = "redis"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		LogLevel:     "info",
		SiteRoot:     "site",
		ContentRoot:  "content",
		AssetsRoot:   "assets",
		MediaURL:     "/media",
		AssetsURL:    "/assets",
		URLStrategy:  "prefix",
		DatabaseURL:  DatabaseMemory,
		RedisPrefix:  "simplecms",
		EventLogging: true,
		S3: S3Config{
			Region:          "us-east-1",
			PresignDuration: 3600,
		},
	}
}

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"` // development, production, testing
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`     // debug, info, warn, error

	// Filesystem roots
	SiteRoot    string `yaml:"site_root" env:"SITE_ROOT"`
	ContentRoot string `yaml:"content_root" env:"CONTENT_ROOT"`
	AssetsRoot  string `yaml:"assets_root" env:"ASSETS_ROOT"`
	PluginsRoot string `yaml:"plugins_root" env:"PLUGINS_ROOT"`
	SiteConfig  string `yaml:"site_config" env:"SITE_CONFIG"` // defaults to <site_root>/config.yml

	// URL generation
	MediaURL    string `yaml:"media_url" env:"MEDIA_URL"`
	AssetsURL   string `yaml:"assets_url" env:"ASSETS_URL"`
	URLStrategy string `yaml:"url_strategy" env:"URL_STRATEGY"` // prefix, cdn, content-based, s3
	CDNBaseURL  string `yaml:"cdn_base_url" env:"CDN_BASE_URL"`
	CDNVersion  string `yaml:"cdn_version" env:"CDN_VERSION"`
	APIBaseURL  string `yaml:"api_base_url" env:"API_BASE_URL"`

	// Database configuration
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"` // memory, postgres://..., redis://...
	DBSchema    string `yaml:"db_schema" env:"DB_SCHEMA"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`

	// API access
	APIKeySHA256 string `yaml:"api_key_sha256" env:"API_KEY_SHA256"`
	JWTSecret    string `yaml:"jwt_secret" env:"JWT_SECRET"`

	EventLogging bool `yaml:"event_logging" env:"EVENT_LOGGING"`

	S3 S3Config `yaml:"s3" env-prefix:"S3_"`
}

// S3Config configures the object store used for signed URLs and publishing.
type S3Config struct {
	Bucket          string `yaml:"bucket" env:"BUCKET"`
	Region          string `yaml:"region" env:"REGION"`
	AccessKeyID     string `yaml:"access_key_id" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" env:"ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"USE_PATH_STYLE"`
	PresignDuration int    `yaml:"presign_duration" env:"PRESIGN_DURATION"`
	KeyPrefix       string `yaml:"key_prefix" env:"KEY_PREFIX"`
	CreateBucket    bool   `yaml:"create_bucket" env:"CREATE_BUCKET"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if _, err := c.DatabaseKind(); err != nil {
		return err
	}

	switch c.URLStrategy {
	case "", "prefix":
	case "cdn":
		if c.CDNBaseURL == "" {
			return errors.New("cdn_base_url is required when url_strategy is cdn")
		}
	case "content-based":
		if c.APIBaseURL == "" {
			return errors.New("api_base_url is required when url_strategy is content-based")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when url_strategy is s3")
		}
	default:
		return fmt.Errorf("unsupported url_strategy: %s (use prefix, cdn, content-based or s3)", c.URLStrategy)
	}

	return nil
}

// DatabaseKind derives the repository type from DatabaseURL.
func (c *ServerConfig) DatabaseKind() (string, error) {
	u := c.DatabaseURL
	switch {
	case u == "" || u == DatabaseMemory || u == "memory://":
		return DatabaseMemory, nil
	case strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://"):
		return DatabasePostgres, nil
	case strings.HasPrefix(u, "redis://") || strings.HasPrefix(u, "rediss://"):
		return DatabaseRedis, nil
	default:
		return "", fmt.Errorf("unsupported database_url format: %s (use 'memory', 'postgres://...' or 'redis://...')", u)
	}
}

// Level parses LogLevel.
func (c *ServerConfig) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger returns a logger writing to w at the configured level. Production
// environments log JSON, everything else text.
func (c *ServerConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := c.Level()
	opts := &slog.HandlerOptions{Level: level}
	if c.Environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SitePath returns the location of the site options file.
func (c *ServerConfig) SitePath() string {
	if c.SiteConfig != "" {
		return c.SiteConfig
	}
	if c.SiteRoot == "" {
		return ""
	}
	return strings.TrimSuffix(c.SiteRoot, "/") + "/config.yml"
}

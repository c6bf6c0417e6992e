package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase sets the database URL: "memory", "postgres://..." or "redis://..."
func WithDatabase(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		if _, err := c.DatabaseKind(); err != nil {
			return err
		}
		return nil
	}
}

// WithRoots sets the site, content and assets roots. Empty values are kept.
func WithRoots(site, content, assets string) Option {
	return func(c *ServerConfig) error {
		if site != "" {
			c.SiteRoot = site
		}
		if content != "" {
			c.ContentRoot = content
		}
		if assets != "" {
			c.AssetsRoot = assets
		}
		return nil
	}
}

// WithPluginsRoot sets the directory disk plugins are loaded from
func WithPluginsRoot(dir string) Option {
	return func(c *ServerConfig) error {
		c.PluginsRoot = dir
		return nil
	}
}

// WithCDNURLs configures the CDN URL strategy
func WithCDNURLs(cdnBaseURL, version string) Option {
	return func(c *ServerConfig) error {
		if cdnBaseURL == "" {
			return fmt.Errorf("CDN base URL cannot be empty for CDN strategy")
		}
		c.URLStrategy = "cdn"
		c.CDNBaseURL = cdnBaseURL
		c.CDNVersion = version
		return nil
	}
}

// WithContentBasedURLs routes file URLs through the API's download endpoint
func WithContentBasedURLs(apiBaseURL string) Option {
	return func(c *ServerConfig) error {
		if apiBaseURL == "" {
			return fmt.Errorf("API base URL cannot be empty for content-based strategy")
		}
		c.URLStrategy = "content-based"
		c.APIBaseURL = apiBaseURL
		return nil
	}
}

// WithS3 configures the object store
func WithS3(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if s3.Region == "" {
			s3.Region = c.S3.Region
		}
		if s3.PresignDuration == 0 {
			s3.PresignDuration = c.S3.PresignDuration
		}
		c.S3 = s3
		return nil
	}
}

// WithSignedURLs serves file URLs as presigned S3 URLs
func WithSignedURLs() Option {
	return func(c *ServerConfig) error {
		c.URLStrategy = "s3"
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EventLogging = enabled
		return nil
	}
}

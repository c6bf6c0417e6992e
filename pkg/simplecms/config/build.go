package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/plugin"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	reporedis "github.com/tendant/simple-cms/pkg/simplecms/repo/redis"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
	"github.com/tendant/simple-cms/pkg/simplecms/urlstrategy"
	"github.com/tendant/simple-cms/plugins/faqblock"
)

// BuildApp creates the App described by the configuration. fsys is the
// host filesystem (nil means the OS), site the site options (nil means
// DefaultSite). opts are applied last and override the configured values.
// The returned func releases database connections.
func (c *ServerConfig) BuildApp(ctx context.Context, fsys afero.Fs, log *slog.Logger, site *SiteConfig, opts ...simplecms.Option) (*simplecms.App, func(), error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = slog.Default()
	}
	if site == nil {
		site = DefaultSite()
	}

	repo, closeRepo, err := c.buildRepository(ctx, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	urls, err := c.buildURLStrategy(ctx, log)
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("failed to build url strategy: %w", err)
	}

	options := []simplecms.Option{
		simplecms.WithFs(fsys),
		simplecms.WithLogger(log),
		simplecms.WithRoots(simplecms.Roots{Site: c.SiteRoot, Content: c.ContentRoot, Assets: c.AssetsRoot}),
		simplecms.WithAssetsURL(c.AssetsURL),
		simplecms.WithURLStrategy(urls),
		simplecms.WithRepository(repo),
		simplecms.WithFieldsets(site.Blocks.Fieldsets),
		simplecms.WithPlugin(faqblock.Plugin()),
	}

	if c.EventLogging {
		options = append(options, simplecms.WithEventSink(simplecms.NewLoggingEventSink(log)))
	}

	if c.PluginsRoot != "" {
		plugins, err := plugin.LoadDir(fsys, c.PluginsRoot)
		if err != nil {
			closeRepo()
			return nil, nil, fmt.Errorf("failed to load plugins: %w", err)
		}
		for _, p := range plugins {
			options = append(options, simplecms.WithPlugin(p))
		}
	}

	app, err := simplecms.New(append(options, opts...)...)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}
	return app, closeRepo, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context, log *slog.Logger) (simplecms.Repository, func(), error) {
	kind, err := c.DatabaseKind()
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case DatabaseMemory:
		return memory.New(), func() {}, nil

	case DatabasePostgres:
		pool, err := c.newPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		log.Info("Using postgres repository", slog.String("schema", c.DBSchema))
		return repopg.NewWithPool(pool), pool.Close, nil

	case DatabaseRedis:
		repo, err := reporedis.Connect(ctx, c.DatabaseURL, c.RedisPrefix, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using redis repository", slog.String("prefix", c.RedisPrefix))
		return repo, func() { _ = repo.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported database kind: %s", kind)
}

func (c *ServerConfig) newPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

func (c *ServerConfig) buildURLStrategy(ctx context.Context, log *slog.Logger) (urlstrategy.URLStrategy, error) {
	cfg := urlstrategy.Config{
		Type:       urlstrategy.URLStrategyType(c.URLStrategy),
		MediaURL:   c.MediaURL,
		CDNBaseURL: c.CDNBaseURL,
		Version:    c.CDNVersion,
		APIBaseURL: c.APIBaseURL,
		KeyPrefix:  c.S3.KeyPrefix,
	}
	if cfg.Type == urlstrategy.StrategyTypeSigned {
		store, err := c.S3Store(ctx, log)
		if err != nil {
			return nil, err
		}
		cfg.Signer = store
	}
	return urlstrategy.NewURLStrategy(cfg)
}

// S3Store creates the configured object store.
func (c *ServerConfig) S3Store(ctx context.Context, log *slog.Logger) (*s3storage.Store, error) {
	if c.S3.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	return s3storage.New(ctx, s3storage.Config{
		Region:                 c.S3.Region,
		Bucket:                 c.S3.Bucket,
		AccessKeyID:            c.S3.AccessKeyID,
		SecretAccessKey:        c.S3.SecretAccessKey,
		Endpoint:               c.S3.Endpoint,
		UsePathStyle:           c.S3.UsePathStyle,
		PresignDuration:        c.S3.PresignDuration,
		CreateBucketIfNotExist: c.S3.CreateBucket,
	}, log)
}

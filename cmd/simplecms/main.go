// Command simplecms serves and inspects a site's content files, assets,
// block fieldsets and plugins.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

var (
	configPath string
	dotEnvPath string
)

var rootCmd = &cobra.Command{
	Use:   "simplecms",
	Short: "Serve and inspect site content files, assets and blocks",
	Long: "simplecms manages the files attached to site pages and the assets below the\n" +
		"assets root. Operations a file does not define itself are resolved against\n" +
		"its asset handle, e.g. 'simplecms call <id> niceSize'.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dotEnvPath, "env-file", ".env", "dotenv file loaded before the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(assetCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(fieldsetsCmd)
	rootCmd.AddCommand(publishCmd)
}

// loadConfig layers the dotenv file, the config file and the environment.
func loadConfig() (*config.ServerConfig, error) {
	opts := []config.Option{config.WithDotEnv(dotEnvPath)}
	if configPath != "" {
		opts = append(opts, config.WithFile(configPath))
	}
	opts = append(opts, config.WithEnv())

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// environment is what every command works with.
type environment struct {
	cfg   *config.ServerConfig
	log   *slog.Logger
	app   *simplecms.App
	close func()
}

func setup(ctx context.Context, fsys afero.Fs) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := cfg.Logger(os.Stderr)

	site, err := config.LoadSite(fsys, cfg.SitePath())
	if err != nil {
		return nil, err
	}

	app, closeApp, err := cfg.BuildApp(ctx, fsys, log, site)
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	return &environment{cfg: cfg, log: log, app: app, close: closeApp}, nil
}

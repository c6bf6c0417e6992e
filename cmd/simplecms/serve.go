package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tendant/chi-demo/app"
	demomw "github.com/tendant/chi-demo/middleware"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API under /api.

Requests are gated by an API key when API_KEY_SHA256 is set. Requests that
change files additionally require a bearer JWT when JWT_SECRET is set.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd.Context(), afero.NewOsFs())
	if err != nil {
		return err
	}
	defer env.close()

	handler, err := newRouter(env.cfg, env.app)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", env.cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		env.log.Info("simplecms starting", slog.String("port", env.cfg.Port), slog.String("env", env.cfg.Environment))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}
	env.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newRouter mounts the API and the health checks.
func newRouter(cfg *config.ServerConfig, cms *simplecms.App) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(60 * time.Second))

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	var opts []api.Option
	if cfg.JWTSecret != "" {
		opts = append(opts, api.WithTokenAuth(api.NewTokenAuth(cfg.JWTSecret)))
	}
	handler := api.NewHandler(cms, opts...)

	var apiKey func(http.Handler) http.Handler
	if cfg.APIKeySHA256 != "" {
		mw, err := demomw.ApiKeyMiddleware(demomw.ApiKeyConfig{
			APIKeys: map[string]string{"key1": cfg.APIKeySHA256},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		apiKey = mw
	}

	r.Route("/api", func(r chi.Router) {
		if apiKey != nil {
			r.Use(apiKey)
		}
		r.Mount("/", handler.Routes())
	})
	return r, nil
}

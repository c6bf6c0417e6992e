// Package api exposes an App over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
	"github.com/tendant/simple-cms/pkg/simplecms/blueprint"
)

// Handler serves the files, assets, fieldsets, blueprints and plugins of an App.
type Handler struct {
	app  *simplecms.App
	log  *slog.Logger
	auth *jwtauth.JWTAuth
}

// Option configures a Handler
type Option func(*Handler)

// WithTokenAuth requires a valid JWT on every request that changes files.
func WithTokenAuth(auth *jwtauth.JWTAuth) Option {
	return func(h *Handler) {
		h.auth = auth
	}
}

// NewHandler creates a Handler for app
func NewHandler(app *simplecms.App, opts ...Option) *Handler {
	h := &Handler{
		app: app,
		log: app.Logger().With(slog.String("item", "api")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewTokenAuth returns an HS256 JWT verifier for secret.
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// Routes returns the router for all endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Get("/{id}", h.GetFile)
		r.Get("/{id}/download", h.DownloadFile)
		r.Get("/{id}/call/{operation}", h.CallFile)

		r.Group(func(r chi.Router) {
			if h.auth != nil {
				r.Use(jwtauth.Verifier(h.auth))
				r.Use(jwtauth.Authenticator)
			}
			r.Post("/", h.CreateFile)
			r.Patch("/{id}", h.UpdateFile)
			r.Delete("/{id}", h.DeleteFile)
			r.Post("/{id}/call/{operation}", h.CallFile)
		})
	})

	r.Get("/assets", h.GetAsset)
	r.Get("/assets/call/{operation}", h.CallAsset)

	r.Get("/fieldsets", h.Fieldsets)
	r.Get("/blueprints/*", h.GetBlueprint)
	r.Get("/plugins", h.ListPlugins)
	r.Get("/panel/plugins/index.js", h.PanelScripts)
	return r
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, simplecms.ErrFileNotFound),
		errors.Is(err, asset.ErrUnknownOperation),
		errors.Is(err, blueprint.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplecms.ErrInvalidFile),
		errors.Is(err, asset.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, asset.ErrMissingURL):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), msg, slog.String("path", r.URL.Path), slog.Any("err", err))
	} else {
		h.log.DebugContext(r.Context(), msg, slog.String("path", r.URL.Path), slog.Any("err", err))
	}
	http.Error(w, err.Error(), status)
}

package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// PluginResponse describes a registered plugin
type PluginResponse struct {
	Name       string   `json:"name"`
	Blueprints []string `json:"blueprints"`
	Snippets   []string `json:"snippets"`
	Panel      bool     `json:"panel"`
}

// GetAsset returns the attributes of the asset given by the path query parameter
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	a := h.app.Asset(r.URL.Query().Get("path"))
	if a.Path() == "" {
		http.Error(w, "Missing required 'path' parameter", http.StatusBadRequest)
		return
	}

	arr, err := a.Call("toArray")
	if err != nil {
		h.fail(w, r, "Failed to read asset", err)
		return
	}
	render.JSON(w, r, arr)
}

// CallAsset runs an operation on the asset given by the path query parameter
func (h *Handler) CallAsset(w http.ResponseWriter, r *http.Request) {
	a := h.app.Asset(r.URL.Query().Get("path"))
	if a.Path() == "" {
		http.Error(w, "Missing required 'path' parameter", http.StatusBadRequest)
		return
	}
	h.call(w, r, a.Call)
}

// Fieldsets returns the resolved block fieldset groups
func (h *Handler) Fieldsets(w http.ResponseWriter, r *http.Request) {
	groups, err := h.app.Fieldsets()
	if err != nil {
		h.fail(w, r, "Failed to resolve fieldsets", err)
		return
	}
	render.JSON(w, r, groups)
}

// GetBlueprint returns a parsed blueprint, e.g. /blueprints/blocks/faq
func (h *Handler) GetBlueprint(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "*"), ".yml")

	bp, err := h.app.Blueprint(name)
	if err != nil {
		h.fail(w, r, "Failed to load blueprint", err)
		return
	}
	render.JSON(w, r, bp)
}

// ListPlugins lists the registered plugins in registration order
func (h *Handler) ListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins := h.app.Plugins().Plugins()

	resp := make([]PluginResponse, 0, len(plugins))
	for _, p := range plugins {
		resp = append(resp, PluginResponse{
			Name:       p.Name,
			Blueprints: keys(p.Blueprints),
			Snippets:   keys(p.Snippets),
			Panel:      p.PanelScript != "",
		})
	}
	render.JSON(w, r, resp)
}

// PanelScripts serves the concatenated panel scripts of all plugins
func (h *Handler) PanelScripts(w http.ResponseWriter, r *http.Request) {
	script, err := h.app.Plugins().PanelScripts()
	if err != nil {
		h.fail(w, r, "Failed to read panel scripts", err)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(script)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

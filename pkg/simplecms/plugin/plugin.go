// Package plugin keeps track of the extensions plugins contribute: blueprint
// and snippet files keyed by name, plus scripts for the panel.
package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

var (
	// ErrInvalidName indicates a plugin name that is not of the form vendor/name
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrDuplicatePlugin indicates a plugin with the same name is already registered
	ErrDuplicatePlugin = errors.New("plugin already registered")

	// ErrDuplicateExtension indicates a blueprint or snippet already claimed by another plugin
	ErrDuplicateExtension = errors.New("extension already registered")
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*/[a-z0-9][a-z0-9._-]*$`)

// Plugin is a registration of extension files. Paths in Blueprints, Snippets
// and PanelScript are relative to Root on Fs.
type Plugin struct {
	Name        string
	Fs          afero.Fs
	Root        string
	Blueprints  map[string]string
	Snippets    map[string]string
	PanelScript string
}

// Source locates one extension file.
type Source struct {
	Plugin string
	Name   string
	Fs     afero.Fs
	Path   string
}

// Read returns the content of the file.
func (s Source) Read() ([]byte, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: read %s: %w", s.Plugin, s.Name, err)
	}
	return data, nil
}

// Registry holds registered plugins. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	plugins    []Plugin
	byName     map[string]int
	blueprints map[string]Source
	snippets   map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]int),
		blueprints: make(map[string]Source),
		snippets:   make(map[string]Source),
	}
}

// Register adds p. Nothing is registered when an error is returned.
func (r *Registry) Register(p Plugin) error {
	if !namePattern.MatchString(p.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	if p.Fs == nil {
		p.Fs = afero.NewOsFs()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name)
	}
	if err := r.checkClaims(p.Name, "blueprint", p.Blueprints, r.blueprints); err != nil {
		return err
	}
	if err := r.checkClaims(p.Name, "snippet", p.Snippets, r.snippets); err != nil {
		return err
	}

	for name, file := range p.Blueprints {
		r.blueprints[name] = p.source(name, file)
	}
	for name, file := range p.Snippets {
		r.snippets[name] = p.source(name, file)
	}
	r.byName[p.Name] = len(r.plugins)
	r.plugins = append(r.plugins, p)
	return nil
}

func (r *Registry) checkClaims(plugin, kind string, files map[string]string, claimed map[string]Source) error {
	for name := range files {
		if name == "" {
			return fmt.Errorf("plugin %s: empty %s name", plugin, kind)
		}
		if existing, ok := claimed[name]; ok {
			return fmt.Errorf("%w: %s %q is provided by %s", ErrDuplicateExtension, kind, name, existing.Plugin)
		}
	}
	return nil
}

func (p Plugin) source(name, file string) Source {
	return Source{Plugin: p.Name, Name: name, Fs: p.Fs, Path: path.Join(p.Root, file)}
}

// Blueprint returns the blueprint file registered under name, e.g. "blocks/faq".
func (r *Registry) Blueprint(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.blueprints[name]
	return s, ok
}

// Snippet returns the snippet file registered under name.
func (r *Registry) Snippet(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snippets[name]
	return s, ok
}

// Blueprints returns the registered blueprint names, sorted.
func (r *Registry) Blueprints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.blueprints)
}

// Snippets returns the registered snippet names, sorted.
func (r *Registry) Snippets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.snippets)
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// PanelScripts concatenates the panel scripts of all plugins in registration order.
func (r *Registry) PanelScripts() ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range r.Plugins() {
		if p.PanelScript == "" {
			continue
		}
		data, err := p.source("panel", p.PanelScript).Read()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "/* %s */\n", p.Name)
		buf.Write(bytes.TrimRight(data, "\n"))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func sortedKeys(m map[string]Source) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package blueprint

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sync"

	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/plugin"
)

//go:embed blocks/*.yml
var core embed.FS

// Origins reported by Loader.Source.
const (
	OriginSite   = "site"
	OriginPlugin = "plugin"
	OriginCore   = "core"
)

// Loader resolves blueprints by name, e.g. "blocks/faq". It checks
// <site>/blueprints/<name>.yml first, then the plugin registry, then the core
// blueprints. Parsed blueprints are cached.
type Loader struct {
	fs       afero.Fs
	siteRoot string
	plugins  *plugin.Registry
	log      *slog.Logger

	mu    sync.Mutex
	cache map[string]*Blueprint
}

// NewLoader creates a loader. siteRoot may be empty and plugins may be nil.
func NewLoader(fsys afero.Fs, siteRoot string, plugins *plugin.Registry, log *slog.Logger) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		fs:       fsys,
		siteRoot: siteRoot,
		plugins:  plugins,
		log:      log,
		cache:    make(map[string]*Blueprint),
	}
}

// Load returns the parsed blueprint called name.
func (l *Loader) Load(name string) (*Blueprint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bp, ok := l.cache[name]; ok {
		return bp, nil
	}

	data, origin, err := l.source(name)
	if err != nil {
		return nil, err
	}
	bp, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	l.log.Debug("loaded blueprint", slog.String("item", name), slog.String("origin", origin))
	l.cache[name] = bp
	return bp, nil
}

// Source returns the unparsed blueprint called name and where it was found.
func (l *Loader) Source(name string) ([]byte, string, error) {
	return l.source(name)
}

func (l *Loader) source(name string) ([]byte, string, error) {
	if name == "" || path.Clean("/"+name) != "/"+name {
		return nil, "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}

	if l.siteRoot != "" {
		data, err := afero.ReadFile(l.fs, path.Join(l.siteRoot, "blueprints", name+".yml"))
		if err == nil {
			return data, OriginSite, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read site blueprint %s: %w", name, err)
		}
	}

	if l.plugins != nil {
		if src, ok := l.plugins.Blueprint(name); ok {
			data, err := src.Read()
			if err != nil {
				return nil, "", err
			}
			return data, OriginPlugin, nil
		}
	}

	if data, err := core.ReadFile(name + ".yml"); err == nil {
		return data, OriginCore, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Core lists the names of the embedded core blueprints.
func Core() []string {
	entries, _ := core.ReadDir("blocks")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, "blocks/"+e.Name()[:len(e.Name())-len(path.Ext(e.Name()))])
	}
	return names
}

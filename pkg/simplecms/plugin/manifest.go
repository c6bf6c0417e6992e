package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest each plugin directory carries.
const ManifestFile = "plugin.yml"

type manifest struct {
	Name       string            `yaml:"name"`
	Blueprints map[string]string `yaml:"blueprints"`
	Snippets   map[string]string `yaml:"snippets"`
	Panel      string            `yaml:"panel"`
}

// ReadManifest reads the plugin.yml in dir.
func ReadManifest(fsys afero.Fs, dir string) (Plugin, error) {
	data, err := afero.ReadFile(fsys, path.Join(dir, ManifestFile))
	if err != nil {
		return Plugin{}, fmt.Errorf("read plugin manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Plugin{}, fmt.Errorf("parse %s: %w", path.Join(dir, ManifestFile), err)
	}
	if m.Name == "" {
		return Plugin{}, fmt.Errorf("%s: %w: name is required", path.Join(dir, ManifestFile), ErrInvalidName)
	}

	return Plugin{
		Name:        m.Name,
		Fs:          fsys,
		Root:        dir,
		Blueprints:  m.Blueprints,
		Snippets:    m.Snippets,
		PanelScript: m.Panel,
	}, nil
}

// LoadDir reads every <dir>/<plugin>/plugin.yml, sorted by directory name.
// Directories without a manifest are skipped. A missing dir yields no plugins.
func LoadDir(fsys afero.Fs, dir string) ([]Plugin, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read plugins dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var plugins []Plugin
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pluginDir := path.Join(dir, e.Name())
		if ok, _ := afero.Exists(fsys, path.Join(pluginDir, ManifestFile)); !ok {
			continue
		}
		p, err := ReadManifest(fsys, pluginDir)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

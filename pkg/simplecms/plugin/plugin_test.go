package plugin

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/plugins/faq/blueprints/blocks/faq.yml":  "name: FAQ\n",
		"/plugins/faq/snippets/blocks/faq.html":   "<dl></dl>\n",
		"/plugins/faq/index.js":                   "panel.plugin('acme/faq', {});\n",
		"/plugins/gallery/blueprints/gallery.yml": "name: Gallery\n",
		"/plugins/gallery/index.js":               "panel.plugin('acme/gallery', {});",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestRegistry_Register(t *testing.T) {
	fs := testFs(t)
	r := NewRegistry()

	err := r.Register(Plugin{
		Name:        "acme/faq",
		Fs:          fs,
		Root:        "/plugins/faq",
		Blueprints:  map[string]string{"blocks/faq": "blueprints/blocks/faq.yml"},
		Snippets:    map[string]string{"blocks/faq": "snippets/blocks/faq.html"},
		PanelScript: "index.js",
	})
	require.NoError(t, err)

	src, ok := r.Blueprint("blocks/faq")
	require.True(t, ok)
	assert.Equal(t, "acme/faq", src.Plugin)
	assert.Equal(t, "/plugins/faq/blueprints/blocks/faq.yml", src.Path)

	data, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, "name: FAQ\n", string(data))

	snippet, ok := r.Snippet("blocks/faq")
	require.True(t, ok)
	assert.Equal(t, "/plugins/faq/snippets/blocks/faq.html", snippet.Path)

	_, ok = r.Blueprint("blocks/missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"blocks/faq"}, r.Blueprints())
	assert.Equal(t, []string{"blocks/faq"}, r.Snippets())
}

func TestRegistry_RegisterErrors(t *testing.T) {
	fs := testFs(t)
	r := NewRegistry()
	require.NoError(t, r.Register(Plugin{
		Name:       "acme/faq",
		Fs:         fs,
		Blueprints: map[string]string{"blocks/faq": "faq.yml"},
	}))

	tests := []struct {
		name   string
		plugin Plugin
		err    error
	}{
		{"no vendor", Plugin{Name: "faq"}, ErrInvalidName},
		{"upper case", Plugin{Name: "Acme/FAQ"}, ErrInvalidName},
		{"too many segments", Plugin{Name: "acme/faq/block"}, ErrInvalidName},
		{"duplicate plugin", Plugin{Name: "acme/faq"}, ErrDuplicatePlugin},
		{"duplicate blueprint", Plugin{Name: "other/faq", Blueprints: map[string]string{"blocks/faq": "x.yml"}}, ErrDuplicateExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Register(tt.plugin), tt.err)
		})
	}

	assert.Len(t, r.Plugins(), 1)
}

func TestRegistry_FailedRegisterLeavesNoTrace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Plugin{Name: "acme/faq", Snippets: map[string]string{"blocks/faq": "faq.html"}}))

	err := r.Register(Plugin{
		Name:       "acme/other",
		Blueprints: map[string]string{"blocks/other": "other.yml"},
		Snippets:   map[string]string{"blocks/faq": "faq.html"},
	})
	assert.ErrorIs(t, err, ErrDuplicateExtension)

	_, ok := r.Blueprint("blocks/other")
	assert.False(t, ok)
	assert.NoError(t, r.Register(Plugin{Name: "acme/other"}))
}

func TestRegistry_PanelScripts(t *testing.T) {
	fs := testFs(t)
	r := NewRegistry()
	require.NoError(t, r.Register(Plugin{Name: "acme/faq", Fs: fs, Root: "/plugins/faq", PanelScript: "index.js"}))
	require.NoError(t, r.Register(Plugin{Name: "acme/plain", Fs: fs}))
	require.NoError(t, r.Register(Plugin{Name: "acme/gallery", Fs: fs, Root: "/plugins/gallery", PanelScript: "index.js"}))

	js, err := r.PanelScripts()
	require.NoError(t, err)
	assert.Equal(t,
		"/* acme/faq */\npanel.plugin('acme/faq', {});\n/* acme/gallery */\npanel.plugin('acme/gallery', {});\n",
		string(js))

	names := []string{}
	for _, p := range r.Plugins() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"acme/faq", "acme/plain", "acme/gallery"}, names)
}

func TestLoadDir(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "/plugins/faq/plugin.yml", []byte(`
name: acme/faq
blueprints:
  blocks/faq: blueprints/blocks/faq.yml
snippets:
  blocks/faq: snippets/blocks/faq.html
panel: index.js
`), 0o644))
	require.NoError(t, fs.MkdirAll("/plugins/empty", 0o755))

	plugins, err := LoadDir(fs, "/plugins")
	require.NoError(t, err)
	require.Len(t, plugins, 1)

	p := plugins[0]
	assert.Equal(t, "acme/faq", p.Name)
	assert.Equal(t, "/plugins/faq", p.Root)
	assert.Equal(t, "index.js", p.PanelScript)
	assert.Equal(t, "blueprints/blocks/faq.yml", p.Blueprints["blocks/faq"])

	r := NewRegistry()
	require.NoError(t, r.Register(p))
	src, ok := r.Snippet("blocks/faq")
	require.True(t, ok)
	data, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, "<dl></dl>\n", string(data))
}

func TestLoadDir_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()

	plugins, err := LoadDir(fs, "/missing")
	require.NoError(t, err)
	assert.Empty(t, plugins)

	require.NoError(t, afero.WriteFile(fs, "/plugins/broken/plugin.yml", []byte("name: [\n"), 0o644))
	_, err = LoadDir(fs, "/plugins")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/other/anon/plugin.yml", []byte("panel: index.js\n"), 0o644))
	_, err = LoadDir(fs, "/other")
	assert.ErrorIs(t, err, ErrInvalidName)
}

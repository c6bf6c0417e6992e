package asset

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	*Accessor
	props map[string]any
}

func newPage(fs afero.Fs, root, url string) *page {
	p := &page{props: map[string]any{}}
	p.Accessor = NewAccessor(p, fs, root, url)
	return p
}

func (p *page) Property(name string) (any, bool) {
	v, ok := p.props[name]
	return v, ok
}

type alwaysImage struct {
	*Accessor
}

func (a *alwaysImage) Type() string { return "image" }

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestAccessor_AssetIsMemoized(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/notes.txt", "")

	first := p.Asset()
	second := p.Asset()

	assert.Same(t, first, second)
}

func TestAccessor_AssetIsBuiltOnceConcurrently(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/photo.jpg", "")

	var wg sync.WaitGroup
	handles := make([]Handle, 16)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = p.Asset()
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestAccessor_VariantSelection(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		url   string
		image bool
	}{
		{"image root", "/content/home/photo.jpg", "", true},
		{"image url", "", "https://cdn.example.com/a/cat.png?w=200", true},
		{"svg", "/assets/logo.svg", "", true},
		{"document", "/content/home/report.pdf", "", false},
		{"unknown", "/content/home/data.xyz", "", false},
		{"nothing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newPage(afero.NewMemMapFs(), tt.root, tt.url).Asset()
			if tt.image {
				assert.IsType(t, &Image{}, h)
			} else {
				assert.IsType(t, &File{}, h)
			}
			assert.Equal(t, tt.root, h.Root())
			assert.Equal(t, tt.url, h.URL())
		})
	}
}

func TestAccessor_EntityTypeDrivesSelection(t *testing.T) {
	e := &alwaysImage{}
	e.Accessor = NewAccessor(e, afero.NewMemMapFs(), "/content/report.pdf", "")

	assert.IsType(t, &Image{}, e.Asset())
}

func TestAccessor_ExistsAndType(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/content/blob", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))

	empty := newPage(fs, "", "")
	assert.False(t, empty.Exists())
	assert.Equal(t, "", empty.Type())

	missing := newPage(fs, "/content/missing.pdf", "")
	assert.False(t, missing.Exists())
	assert.Equal(t, "document", missing.Type())

	sniffed := newPage(fs, "/content/blob", "")
	assert.True(t, sniffed.Exists())
	assert.Equal(t, "image", sniffed.Type())
	assert.IsType(t, &Image{}, sniffed.Asset())

	remote := newPage(fs, "", "https://example.com/video.mp4")
	assert.False(t, remote.Exists())
	assert.Equal(t, "video", remote.Type())
}

func TestAccessor_CallPrefersProperties(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/notes.txt", "")
	p.props["filename"] = "from-property"

	got, err := p.Call("filename")
	require.NoError(t, err)
	assert.Equal(t, "from-property", got)

	_, cached := p.Cached()
	assert.False(t, cached, "property lookup must not build the handle")
}

func TestAccessor_CallBuiltins(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/notes.txt", "https://example.com/notes.txt")

	root, err := p.Call("root")
	require.NoError(t, err)
	assert.Equal(t, "/content/notes.txt", root)

	url, err := p.Call("url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/notes.txt", url)

	typ, err := p.Call("type")
	require.NoError(t, err)
	assert.Equal(t, "document", typ)

	_, cached := p.Cached()
	assert.False(t, cached)

	h, err := p.Call("asset")
	require.NoError(t, err)
	assert.Same(t, p.Asset(), h)
}

func TestAccessor_CallProxiesToHandle(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/content/notes.txt", []byte("hello"), 0o644))
	p := newPage(fs, "/content/notes.txt", "")

	got, err := p.Call("size")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	h, cached := p.Cached()
	require.True(t, cached)

	got, err = p.Call("extension")
	require.NoError(t, err)
	assert.Equal(t, "txt", got)
	assert.Same(t, h, p.Asset())
}

func TestAccessor_CallPassesArguments(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/photo.jpeg", "")

	got, err := p.Call("is", "jpg")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = p.Call("is", 42)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAccessor_CallUnknownOperation(t *testing.T) {
	p := newPage(afero.NewMemMapFs(), "/content/notes.txt", "")

	_, err := p.Call("frobnicate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOperation)

	var opErr *UnknownOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "frobnicate", opErr.Name)
	assert.Equal(t, `the method: "frobnicate" does not exist`, err.Error())
}

func TestAccessor_String(t *testing.T) {
	fs := afero.NewMemMapFs()

	local := newPage(fs, "/content/notes.txt", "https://example.com/notes.txt")
	assert.Equal(t, local.Asset().String(), local.String())
	assert.Equal(t, "/content/notes.txt", local.String())

	remote := newPage(fs, "", "https://example.com/report.pdf")
	assert.Equal(t, "https://example.com/report.pdf", remote.String())

	img := newPage(fs, "/content/photo.png", "/media/photo.png")
	assert.Equal(t, img.Asset().String(), img.String())
	assert.Equal(t, `<img alt="" src="/media/photo.png">`, img.String())
}

func TestAccessor_OverridesReplaceCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newPage(fs, "/content/notes.txt", "")
	original := p.Asset()

	replaced := p.AssetWith(Props{Root: "/content/other.txt", URL: "/media/other.txt"})
	assert.NotSame(t, original, replaced)
	assert.Same(t, replaced, p.Asset())
	assert.Equal(t, "/content/other.txt", p.Asset().Root())
	assert.Same(t, p, replaced.Model())

	again := p.AssetAt("/content/third.txt")
	assert.NotSame(t, replaced, again)
	assert.Same(t, again, p.Asset())
	assert.Equal(t, "", again.URL())

	// the variant follows the entity, not the override root
	assert.IsType(t, &File{}, p.AssetAt("/content/photo.png"))
}

func TestAccessor_DefaultModel(t *testing.T) {
	a := NewAccessor(nil, afero.NewMemMapFs(), "/content/photo.gif", "")

	h := a.Asset()
	assert.IsType(t, &Image{}, h)
	assert.Same(t, a, h.Model())
}

func TestAccessor_ImageThroughProxy(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/content/wide.png", 40, 20)
	p := newPage(fs, "/content/wide.png", "/media/wide.png")

	width, err := p.Call("width")
	require.NoError(t, err)
	assert.Equal(t, 40, width)

	orientation, err := p.Call("orientation")
	require.NoError(t, err)
	assert.Equal(t, Landscape, orientation)

	tag, err := p.Call("html", map[string]any{"alt": "Wide"})
	require.NoError(t, err)
	assert.Equal(t, `<img alt="Wide" src="/media/wide.png">`, tag)
}

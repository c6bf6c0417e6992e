package asset

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_LocalOperations(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/content/home/notes.txt", []byte("hello"), 0o644))

	f := NewFile(fs, Props{Root: "/content/home/notes.txt", URL: "/media/home/notes.txt"})

	assert.True(t, f.Exists())
	assert.Equal(t, "notes.txt", f.Filename())
	assert.Equal(t, "notes", f.Name())
	assert.Equal(t, "txt", f.Extension())
	assert.Equal(t, "document", f.Type())
	assert.Equal(t, "text/plain", f.Mime())
	assert.Equal(t, int64(5), f.Size())
	assert.Equal(t, "5 B", f.NiceSize())
	assert.True(t, f.IsReadable())
	assert.True(t, f.IsWritable())
	assert.False(t, f.IsResizable())
	assert.False(t, f.IsViewable())
	assert.Equal(t, "/content/home/notes.txt", f.String())

	content, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	sum, err := f.SHA1()
	require.NoError(t, err)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", sum)

	b64, err := f.Base64()
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", b64)

	uri, err := f.DataURI()
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", uri)

	arr := f.ToArray()
	assert.Equal(t, "notes.txt", arr["filename"])
	assert.Equal(t, int64(5), arr["size"])
	assert.Contains(t, arr, "modified")
}

func TestFile_RemoteOnly(t *testing.T) {
	f := NewFile(afero.NewMemMapFs(), Props{URL: "https://cdn.example.com/files/report.pdf?v=2"})

	assert.False(t, f.Exists())
	assert.Equal(t, "report.pdf", f.Filename())
	assert.Equal(t, "pdf", f.Extension())
	assert.Equal(t, "document", f.Type())
	assert.Equal(t, "application/pdf", f.Mime())
	assert.Equal(t, int64(0), f.Size())
	assert.False(t, f.IsReadable())
	assert.False(t, f.IsWritable())
	assert.Equal(t, "https://cdn.example.com/files/report.pdf?v=2", f.String())

	_, err := f.Read()
	assert.Error(t, err)

	_, err = f.Modified()
	assert.Error(t, err)
}

func TestFile_WritableDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/content/home", 0o755))

	f := NewFile(fs, Props{Root: "/content/home/new.txt"})
	assert.False(t, f.Exists())
	assert.True(t, f.IsWritable())

	orphan := NewFile(fs, Props{Root: "/nowhere/new.txt"})
	assert.False(t, orphan.IsWritable())
}

func TestFile_Is(t *testing.T) {
	f := NewFile(afero.NewMemMapFs(), Props{Root: "/content/photo.jpg"})

	assert.True(t, f.Is("jpg"))
	assert.True(t, f.Is(".JPEG"))
	assert.True(t, f.Is("image/jpeg"))
	assert.False(t, f.Is("png"))
	assert.False(t, f.Is(""))
}

func TestNiceSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1 MB"},
		{5 * 1024 * 1024 * 1024, "5 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, niceSize(tt.size))
		})
	}
}

func TestFile_OperationTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/content/notes.txt", []byte("hello"), 0o644))
	f := NewFile(fs, Props{Root: "/content/notes.txt"})

	names := f.Operations()
	assert.Contains(t, names, "read")
	assert.Contains(t, names, "niceSize")
	assert.NotContains(t, names, "width")
	assert.IsIncreasing(t, names)

	op, ok := f.Lookup("read")
	require.True(t, ok)
	got, err := op()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	op, ok = f.Lookup("modified")
	require.True(t, ok)
	mod, err := op()
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, mod)

	year, err := op("2006")
	require.NoError(t, err)
	assert.Len(t, year, 4)

	_, err = op(2006)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	op, ok = f.Lookup("is")
	require.True(t, ok)
	_, err = op()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, ok = f.Lookup("frobnicate")
	assert.False(t, ok)
}

func TestImage_Dimensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/content/tall.png", 10, 30)
	writePNG(t, fs, "/content/square.png", 16, 16)

	tall := NewImage(fs, Props{Root: "/content/tall.png"})
	assert.Equal(t, Dimensions{Width: 10, Height: 30}, tall.Dimensions())
	assert.Equal(t, 0.33, tall.Ratio())
	assert.Equal(t, Portrait, tall.Orientation())
	assert.True(t, tall.IsPortrait())
	assert.False(t, tall.IsLandscape())
	assert.True(t, tall.IsResizable())
	assert.True(t, tall.IsViewable())

	square := NewImage(fs, Props{Root: "/content/square.png"})
	assert.True(t, square.IsSquare())
	assert.Equal(t, 1.0, square.Ratio())

	missing := NewImage(fs, Props{Root: "/content/missing.png"})
	_, err := missing.ReadDimensions()
	assert.Error(t, err)
	assert.Equal(t, Dimensions{}, missing.Dimensions())
	assert.Equal(t, "", missing.Orientation())
}

func TestImage_SVGDimensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/assets/sized.svg",
		[]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="32px" height="16"></svg>`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/assets/boxed.svg",
		[]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 60"></svg>`), 0o644))

	sized := NewImage(fs, Props{Root: "/assets/sized.svg"})
	assert.Equal(t, Dimensions{Width: 32, Height: 16}, sized.Dimensions())
	assert.False(t, sized.IsResizable())

	boxed := NewImage(fs, Props{Root: "/assets/boxed.svg"})
	assert.Equal(t, Dimensions{Width: 120, Height: 60}, boxed.Dimensions())
}

func TestImage_HTML(t *testing.T) {
	fs := afero.NewMemMapFs()

	img := NewImage(fs, Props{Root: "/content/a.png", URL: "/media/a.png"})
	tag, err := img.HTML(map[string]string{"class": "hero", "alt": `say "hi"`, "src": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, `<img alt="say &#34;hi&#34;" class="hero" src="/media/a.png">`, tag)

	local := NewImage(fs, Props{Root: "/content/a.png"})
	_, err = local.HTML(nil)
	assert.ErrorIs(t, err, ErrMissingURL)
	assert.Equal(t, "/content/a.png", local.String())

	op, ok := img.Lookup("html")
	require.True(t, ok)
	_, err = op("class=hero")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestImage_OperationTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/content/wide.png", 40, 20)
	img := NewImage(fs, Props{Root: "/content/wide.png"})

	names := img.Operations()
	for _, name := range []string{"read", "width", "height", "exif", "html", "isSquare"} {
		assert.Contains(t, names, name)
	}

	op, ok := img.Lookup("isResizable")
	require.True(t, ok)
	got, err := op()
	require.NoError(t, err)
	assert.Equal(t, true, got)

	op, ok = img.Lookup("toArray")
	require.True(t, ok)
	got, err = op()
	require.NoError(t, err)
	arr := got.(map[string]any)
	assert.Equal(t, "wide.png", arr["filename"])
	dims := arr["dimensions"].(map[string]any)
	assert.Equal(t, 40, dims["width"])
	assert.Equal(t, Landscape, dims["orientation"])
}

func TestImage_ExifWithoutData(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "/content/plain.png", 4, 4)

	data, err := NewImage(fs, Props{Root: "/content/plain.png"}).Exif()
	require.NoError(t, err)
	assert.Equal(t, &Exif{}, data)

	_, err = NewImage(fs, Props{Root: "/content/missing.jpg"}).Exif()
	assert.Error(t, err)
}

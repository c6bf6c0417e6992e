package simplecms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	"github.com/tendant/simple-cms/pkg/simplecms/urlstrategy"
	"github.com/tendant/simple-cms/plugins/faqblock"
)

func newApp(t *testing.T, opts ...simplecms.Option) (*simplecms.App, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	base := []simplecms.Option{
		simplecms.WithFs(fs),
		simplecms.WithRoots(simplecms.Roots{Site: "/site", Content: "/content", Assets: "/assets"}),
		simplecms.WithRepository(memory.New()),
	}
	app, err := simplecms.New(append(base, opts...)...)
	require.NoError(t, err)
	return app, fs
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := simplecms.New(simplecms.WithFs(afero.NewMemMapFs()))
	assert.EqualError(t, err, "repository is required")
}

func TestNew_RejectsBadPlugin(t *testing.T) {
	_, err := simplecms.New(
		simplecms.WithRepository(memory.New()),
		simplecms.WithPlugin(faqblock.Plugin()),
		simplecms.WithPlugin(faqblock.Plugin()),
	)
	assert.Error(t, err)
}

func TestApp_FileLifecycle(t *testing.T) {
	app, fs := newApp(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/content/blog/hello/notes.txt", []byte("hello"), 0o644))

	f, err := app.CreateFile(ctx, simplecms.CreateFileRequest{
		Parent:   "/blog/hello/",
		Filename: "notes.txt",
		Content:  map[string]any{"caption": "Notes", "credit": "Me"},
	})
	require.NoError(t, err)
	assert.Equal(t, "blog/hello", f.Record().Parent)
	assert.Equal(t, "/content/blog/hello/notes.txt", f.Root())
	assert.Equal(t, "/media/blog/hello/notes.txt", f.URL())
	assert.True(t, f.Exists())
	assert.Equal(t, "document", f.Type())

	size, err := f.Call("niceSize")
	require.NoError(t, err)
	assert.Equal(t, "5 B", size)

	filename, err := f.Call("filename")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", filename)

	updated, err := app.UpdateFileContent(ctx, f.ID(), map[string]any{"caption": nil, "alt": "A"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"credit": "Me", "alt": "A"}, updated.Content())

	got, err := app.File(ctx, f.ID())
	require.NoError(t, err)
	assert.Equal(t, updated.Content(), got.Content())

	require.NoError(t, app.DeleteFile(ctx, f.ID()))
	_, err = app.File(ctx, f.ID())
	assert.True(t, simplecms.IsNotFound(err))

	var fileErr *simplecms.FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, "get", fileErr.Op)
	assert.Equal(t, f.ID(), fileErr.FileID)

	// the file on disk is left alone
	exists, err := afero.Exists(fs, "/content/blog/hello/notes.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApp_CreateFileValidation(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  simplecms.CreateFileRequest
	}{
		{"no parent", simplecms.CreateFileRequest{Filename: "a.txt"}},
		{"no filename", simplecms.CreateFileRequest{Parent: "blog"}},
		{"escaping parent", simplecms.CreateFileRequest{Parent: "../etc", Filename: "a.txt"}},
		{"unclean parent", simplecms.CreateFileRequest{Parent: "blog//x", Filename: "a.txt"}},
		{"nested filename", simplecms.CreateFileRequest{Parent: "blog", Filename: "a/b.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.CreateFile(ctx, tt.req)
			assert.ErrorIs(t, err, simplecms.ErrInvalidFile)
		})
	}
}

func TestApp_FilesAreSorted(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	for _, req := range []simplecms.CreateFileRequest{
		{Parent: "gallery", Filename: "c.jpg", Sort: 2},
		{Parent: "gallery", Filename: "b.jpg", Sort: 1},
		{Parent: "gallery", Filename: "a.jpg", Sort: 2},
		{Parent: "other", Filename: "z.jpg"},
	} {
		_, err := app.CreateFile(ctx, req)
		require.NoError(t, err)
	}

	files, err := app.Files(ctx, "gallery")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Record().Filename)
		assert.Equal(t, "image", f.Type())
	}
	assert.Equal(t, []string{"b.jpg", "a.jpg", "c.jpg"}, names)
}

func TestApp_Hooks(t *testing.T) {
	var calls []string
	hooks := simplecms.Hooks{
		BeforeFileCreate: []simplecms.BeforeFileCreateHook{
			func(hctx *simplecms.HookContext, req *simplecms.CreateFileRequest) error {
				calls = append(calls, "before:first")
				req.Template = "cover"
				hctx.StopChain = true
				return nil
			},
			func(hctx *simplecms.HookContext, req *simplecms.CreateFileRequest) error {
				calls = append(calls, "before:second")
				return nil
			},
		},
		AfterFileCreate: []simplecms.AfterFileCreateHook{
			func(hctx *simplecms.HookContext, f *simplecms.File) error {
				calls = append(calls, "after:"+f.Record().Template)
				return nil
			},
		},
		BeforeFileDelete: []simplecms.BeforeFileDeleteHook{
			func(hctx *simplecms.HookContext, id uuid.UUID) error {
				return errors.New("locked")
			},
		},
		OnError: []simplecms.ErrorHook{
			func(hctx *simplecms.HookContext, operation string, err error) {
				calls = append(calls, "error:"+operation)
			},
		},
	}

	app, _ := newApp(t, simplecms.WithHooks(hooks))
	ctx := context.Background()

	f, err := app.CreateFile(ctx, simplecms.CreateFileRequest{Parent: "blog", Filename: "a.jpg"})
	require.NoError(t, err)

	err = app.DeleteFile(ctx, f.ID())
	assert.ErrorContains(t, err, "locked")

	_, err = app.File(ctx, f.ID())
	require.NoError(t, err, "a failed before hook must keep the file")

	assert.Equal(t, []string{"before:first", "after:cover", "error:delete_file"}, calls)
}

type recordingSink struct {
	simplecms.NoopEventSink
	created []string
}

func (s *recordingSink) FileCreated(ctx context.Context, rec *simplecms.FileRecord) error {
	s.created = append(s.created, rec.Key())
	return errors.New("sink down")
}

func TestApp_EventSinkFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{}
	app, _ := newApp(t, simplecms.WithEventSink(sink))

	_, err := app.CreateFile(context.Background(), simplecms.CreateFileRequest{Parent: "blog", Filename: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"blog/a.txt"}, sink.created)
}

func TestApp_URLStrategy(t *testing.T) {
	app, _ := newApp(t, simplecms.WithURLStrategy(urlstrategy.NewCDNStrategy("https://cdn.example.com")))

	f, err := app.CreateFile(context.Background(), simplecms.CreateFileRequest{Parent: "blog", Filename: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog/a.png", f.URL())
	assert.IsType(t, &asset.Image{}, f.Asset())
}

func TestApp_Asset(t *testing.T) {
	app, fs := newApp(t, simplecms.WithAssetsURL("https://example.com/assets/"))
	require.NoError(t, afero.WriteFile(fs, "/assets/css/site.css", []byte("body{}"), 0o644))

	a := app.Asset("/css/../css/site.css")
	assert.Equal(t, "css/site.css", a.Path())
	assert.Equal(t, "/assets/css/site.css", a.Root())
	assert.Equal(t, "https://example.com/assets/css/site.css", a.URL())
	assert.True(t, a.Exists())

	p, err := a.Call("path")
	require.NoError(t, err)
	assert.Equal(t, "css/site.css", p)

	mime, err := a.Call("mime")
	require.NoError(t, err)
	assert.Equal(t, "text/css", mime)

	_, err = a.Call("frobnicate")
	assert.ErrorIs(t, err, simplecms.ErrUnknownOperation)

	empty := app.Asset("")
	assert.Equal(t, "", empty.Root())
	assert.False(t, empty.Exists())
}

func TestApp_FieldsetsWithFAQPlugin(t *testing.T) {
	app, _ := newApp(t, simplecms.WithPlugin(faqblock.Plugin()))

	groups, err := app.Fieldsets()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "custom", groups[0].Name)
	require.Len(t, groups[0].Fieldsets, 1)
	assert.Equal(t, faqblock.BlockFAQ, groups[0].Fieldsets[0].Type)
	assert.Equal(t, "kirby", groups[1].Name)

	bp, err := app.Blueprint("blocks/faq")
	require.NoError(t, err)
	assert.Equal(t, "FAQ", bp.Title)
}

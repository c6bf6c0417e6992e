package simplecms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/block"
	"github.com/tendant/simple-cms/pkg/simplecms/blueprint"
	"github.com/tendant/simple-cms/pkg/simplecms/plugin"
	"github.com/tendant/simple-cms/pkg/simplecms/urlstrategy"
)

// DefaultAssetsURL is the base URL of Asset entities unless WithAssetsURL is given.
const DefaultAssetsURL = "/assets"

// App is the host context shared by all entities of a process.
type App struct {
	fs         afero.Fs
	log        *slog.Logger
	roots      Roots
	assetsURL  string
	urls       urlstrategy.URLStrategy
	repository Repository
	events     EventSink
	hooks      Hooks
	groups     []block.Group

	pending    []plugin.Plugin
	plugins    *plugin.Registry
	blueprints *blueprint.Loader
}

// Option represents a functional option for configuring the App
type Option func(*App)

// WithFs sets the filesystem files and assets are read from
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithRoots sets the site, content and assets roots
func WithRoots(roots Roots) Option {
	return func(a *App) {
		a.roots = roots
	}
}

// WithAssetsURL sets the base URL of Asset entities
func WithAssetsURL(base string) Option {
	return func(a *App) {
		a.assetsURL = strings.TrimSuffix(base, "/")
	}
}

// WithURLStrategy sets the URL strategy for content files
func WithURLStrategy(s urlstrategy.URLStrategy) Option {
	return func(a *App) {
		a.urls = s
	}
}

// WithRepository sets the repository for file records
func WithRepository(repo Repository) Option {
	return func(a *App) {
		a.repository = repo
	}
}

// WithEventSink sets the event sink
func WithEventSink(sink EventSink) Option {
	return func(a *App) {
		a.events = sink
	}
}

// WithHooks adds lifecycle hooks. It may be given more than once.
func WithHooks(h Hooks) Option {
	return func(a *App) {
		a.hooks.Merge(h)
	}
}

// WithPlugin registers a plugin when the App is built.
func WithPlugin(p plugin.Plugin) Option {
	return func(a *App) {
		a.pending = append(a.pending, p)
	}
}

// WithFieldsets replaces the default block fieldset groups
func WithFieldsets(groups []block.Group) Option {
	return func(a *App) {
		a.groups = groups
	}
}

// New creates a new App with the given options
func New(options ...Option) (*App, error) {
	a := &App{
		fs:        afero.NewOsFs(),
		log:       slog.Default(),
		assetsURL: DefaultAssetsURL,
		urls:      urlstrategy.NewDefaultStrategy(),
		events:    NewNoopEventSink(),
		groups:    block.DefaultGroups(),
		plugins:   plugin.NewRegistry(),
	}

	for _, option := range options {
		option(a)
	}

	if a.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if a.fs == nil || a.log == nil || a.urls == nil || a.events == nil {
		return nil, fmt.Errorf("fs, logger, url strategy and event sink must not be nil")
	}

	for _, p := range a.pending {
		if err := a.plugins.Register(p); err != nil {
			return nil, fmt.Errorf("register plugin: %w", err)
		}
		a.log.Debug("registered plugin", slog.String("item", p.Name))
	}
	a.pending = nil

	a.blueprints = blueprint.NewLoader(a.fs, a.roots.Site, a.plugins, a.log)
	return a, nil
}

// Fs returns the filesystem of the App
func (a *App) Fs() afero.Fs { return a.fs }

// Logger returns the logger of the App
func (a *App) Logger() *slog.Logger { return a.log }

// Roots returns the configured roots
func (a *App) Roots() Roots { return a.roots }

// Plugins returns the plugin registry
func (a *App) Plugins() *plugin.Registry { return a.plugins }

// Blueprints returns the blueprint loader
func (a *App) Blueprints() *blueprint.Loader { return a.blueprints }

// Blueprint loads the blueprint called name, e.g. "blocks/faq".
func (a *App) Blueprint(name string) (*blueprint.Blueprint, error) {
	return a.blueprints.Load(name)
}

// Fieldsets resolves the configured block fieldset groups.
func (a *App) Fieldsets() ([]block.ResolvedGroup, error) {
	return block.Resolve(a.groups, a.blueprints)
}

// FieldsetGroups returns the configured groups without resolving them.
func (a *App) FieldsetGroups() []block.Group {
	out := make([]block.Group, len(a.groups))
	copy(out, a.groups)
	return out
}

// File operations

func (a *App) CreateFile(ctx context.Context, req CreateFileRequest) (*File, error) {
	if err := a.hooks.executeBeforeFileCreate(ctx, &req); err != nil {
		a.hooks.executeOnError(ctx, "create_file", err)
		return nil, fmt.Errorf("before create hook failed: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &FileRecord{
		ID:        uuid.New(),
		Parent:    req.Parent,
		Filename:  req.Filename,
		Template:  req.Template,
		Content:   maps.Clone(req.Content),
		Sort:      req.Sort,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if rec.Content == nil {
		rec.Content = make(map[string]any)
	}

	if err := a.repository.CreateFile(ctx, rec); err != nil {
		a.hooks.executeOnError(ctx, "create_file", err)
		return nil, &FileError{FileID: rec.ID, Op: "create", Err: err}
	}
	if err := a.events.FileCreated(ctx, rec); err != nil {
		a.log.WarnContext(ctx, "event sink failed", slog.String("item", rec.Key()), slog.Any("err", err))
	}

	f := a.newFile(ctx, rec)
	if err := a.hooks.executeAfterFileCreate(ctx, f); err != nil {
		a.hooks.executeOnError(ctx, "create_file", err)
		return nil, fmt.Errorf("after create hook failed: %w", err)
	}
	return f, nil
}

// UpdateFileContent merges patch into the file's content. Keys with a nil
// value are removed.
func (a *App) UpdateFileContent(ctx context.Context, id uuid.UUID, patch map[string]any) (*File, error) {
	rec, err := a.repository.GetFile(ctx, id)
	if err != nil {
		return nil, &FileError{FileID: id, Op: "update", Err: err}
	}

	if rec.Content == nil {
		rec.Content = make(map[string]any)
	}
	for k, v := range patch {
		if v == nil {
			delete(rec.Content, k)
			continue
		}
		rec.Content[k] = v
	}
	rec.UpdatedAt = time.Now().UTC()

	if err := a.repository.UpdateFile(ctx, rec); err != nil {
		a.hooks.executeOnError(ctx, "update_file", err)
		return nil, &FileError{FileID: id, Op: "update", Err: err}
	}
	if err := a.events.FileUpdated(ctx, rec); err != nil {
		a.log.WarnContext(ctx, "event sink failed", slog.String("item", rec.Key()), slog.Any("err", err))
	}

	f := a.newFile(ctx, rec)
	if err := a.hooks.executeAfterFileUpdate(ctx, f); err != nil {
		a.hooks.executeOnError(ctx, "update_file", err)
		return nil, fmt.Errorf("after update hook failed: %w", err)
	}
	return f, nil
}

// File returns the file with the given ID.
func (a *App) File(ctx context.Context, id uuid.UUID) (*File, error) {
	rec, err := a.repository.GetFile(ctx, id)
	if err != nil {
		return nil, &FileError{FileID: id, Op: "get", Err: err}
	}
	return a.newFile(ctx, rec), nil
}

// Files returns the files attached to parent ordered by sort number, then filename.
func (a *App) Files(ctx context.Context, parent string) ([]*File, error) {
	recs, err := a.repository.ListFiles(ctx, strings.Trim(parent, "/"))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Sort != recs[j].Sort {
			return recs[i].Sort < recs[j].Sort
		}
		return recs[i].Filename < recs[j].Filename
	})

	files := make([]*File, 0, len(recs))
	for _, rec := range recs {
		files = append(files, a.newFile(ctx, rec))
	}
	return files, nil
}

// DeleteFile removes the file record. The file on disk is left alone.
func (a *App) DeleteFile(ctx context.Context, id uuid.UUID) error {
	if err := a.hooks.executeBeforeFileDelete(ctx, id); err != nil {
		a.hooks.executeOnError(ctx, "delete_file", err)
		return fmt.Errorf("before delete hook failed: %w", err)
	}

	if err := a.repository.DeleteFile(ctx, id); err != nil {
		a.hooks.executeOnError(ctx, "delete_file", err)
		return &FileError{FileID: id, Op: "delete", Err: err}
	}
	if err := a.events.FileDeleted(ctx, id); err != nil {
		a.log.WarnContext(ctx, "event sink failed", slog.String("id", id.String()), slog.Any("err", err))
	}

	if err := a.hooks.executeAfterFileDelete(ctx, id); err != nil {
		a.hooks.executeOnError(ctx, "delete_file", err)
		return fmt.Errorf("after delete hook failed: %w", err)
	}
	return nil
}

// Asset returns the entity for a file below the assets root, addressed by
// its relative path, e.g. "images/logo.svg".
func (a *App) Asset(p string) *Asset {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	root := ""
	if a.roots.Assets != "" && p != "" {
		root = filepath.Join(a.roots.Assets, filepath.FromSlash(p))
	}
	url := ""
	if p != "" {
		url = a.assetsURL + "/" + p
	}
	return newAsset(a, p, root, url)
}

func (a *App) newFile(ctx context.Context, rec *FileRecord) *File {
	root := ""
	if a.roots.Content != "" {
		root = filepath.Join(a.roots.Content, filepath.FromSlash(rec.Parent), rec.Filename)
	}

	url, err := a.urls.FileURL(ctx, rec.ID, rec.Key())
	if err != nil {
		a.log.WarnContext(ctx, "no public url for file", slog.String("item", rec.Key()), slog.Any("err", err))
		url = ""
	}
	return newFile(a, rec, root, url)
}

// IsNotFound reports whether err means a file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

package asset

import (
	"sync"

	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/filetype"
)

// PropertyReader is implemented by entities that expose named properties to
// Accessor.Call. ok is false when the entity has no such property set.
type PropertyReader interface {
	Property(name string) (value any, ok bool)
}

// Accessor gives an entity a lazily built, cached asset handle. Entities
// embed it and pass themselves as the model so that overrides of Root, URL
// or Type take part in handle construction.
type Accessor struct {
	fs    afero.Fs
	root  string
	url   string
	model Model

	mu    sync.Mutex
	asset Handle
}

// NewAccessor returns an accessor for the given root and url. model is the
// embedding entity; a nil model makes the accessor its own model. A nil fs
// means the host filesystem.
func NewAccessor(model Model, fs afero.Fs, root, url string) *Accessor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	a := &Accessor{fs: fs, root: root, url: url, model: model}
	if a.model == nil {
		a.model = a
	}
	return a
}

// Root returns the stored path, or "".
func (a *Accessor) Root() string {
	return a.root
}

// URL returns the stored URL, or "".
func (a *Accessor) URL() string {
	return a.url
}

// Fs returns the filesystem handles are built on.
func (a *Accessor) Fs() afero.Fs {
	return a.fs
}

// Exists reports whether the model's root exists. It never fails.
func (a *Accessor) Exists() bool {
	root := a.model.Root()
	if root == "" {
		return false
	}
	_, err := a.fs.Stat(root)
	return err == nil
}

// Type classifies the root if set, else the URL. It returns "" when neither
// is set or the type is unknown.
func (a *Accessor) Type() string {
	if root := a.model.Root(); root != "" {
		return filetype.Detect(a.fs, root)
	}
	return filetype.Type(a.model.URL())
}

// Asset returns the cached handle, building it from the model on first use.
func (a *Accessor) Asset() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.asset == nil {
		a.asset = a.build(Props{Root: a.model.Root(), URL: a.model.URL(), Model: a.model})
	}
	return a.asset
}

// AssetWith builds a handle from props and replaces the cached one.
func (a *Accessor) AssetWith(props Props) Handle {
	if props.Model == nil {
		props.Model = a.model
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.asset = a.build(props)
	return a.asset
}

// AssetAt is AssetWith for a root path only.
func (a *Accessor) AssetAt(root string) Handle {
	return a.AssetWith(Props{Root: root})
}

// Cached returns the handle if one has been built.
func (a *Accessor) Cached() (Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.asset, a.asset != nil
}

func (a *Accessor) build(props Props) Handle {
	if a.model.Type() == filetype.Image {
		return NewImage(a.fs, props)
	}
	return NewFile(a.fs, props)
}

// Call invokes an operation by name. Properties of the entity win, then the
// accessor's own methods, then the handle's operation table. Resolving a
// property never builds the handle.
func (a *Accessor) Call(name string, args ...any) (any, error) {
	if v, ok := a.property(name); ok {
		return v, nil
	}

	switch name {
	case "root":
		return a.model.Root(), nil
	case "url":
		return a.model.URL(), nil
	case "exists":
		return a.Exists(), nil
	case "type":
		return a.model.Type(), nil
	case "asset":
		return a.Asset(), nil
	}

	if op, ok := a.Asset().Lookup(name); ok {
		return op(args...)
	}
	return nil, &UnknownOperationError{Name: name}
}

func (a *Accessor) property(name string) (any, bool) {
	if pr, ok := a.model.(PropertyReader); ok {
		if v, ok := pr.Property(name); ok {
			return v, true
		}
	}
	if name == "asset" {
		if h, ok := a.Cached(); ok {
			return h, true
		}
	}
	return nil, false
}

// String returns the string form of the handle.
func (a *Accessor) String() string {
	return a.Asset().String()
}

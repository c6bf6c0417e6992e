package simplecms

import (
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
)

// Asset is a plain file below the assets root, such as a stylesheet or logo.
type Asset struct {
	*asset.Accessor

	app  *App
	path string
}

func newAsset(app *App, path, root, url string) *Asset {
	a := &Asset{app: app, path: path}
	a.Accessor = asset.NewAccessor(a, app.fs, root, url)
	return a
}

// App returns the host context the asset belongs to.
func (a *Asset) App() *App { return a.app }

// Path returns the path relative to the assets root.
func (a *Asset) Path() string { return a.path }

// Property implements asset.PropertyReader.
func (a *Asset) Property(name string) (any, bool) {
	if name == "path" {
		return a.path, a.path != ""
	}
	return nil, false
}

package simplecms

import (
	"maps"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
)

// File is a content file attached to a page. Operations it does not define
// are available through Call, e.g. f.Call("niceSize").
type File struct {
	*asset.Accessor

	app    *App
	record *FileRecord
}

func newFile(app *App, rec *FileRecord, root, url string) *File {
	f := &File{app: app, record: rec}
	f.Accessor = asset.NewAccessor(f, app.fs, root, url)
	return f
}

// App returns the host context the file belongs to.
func (f *File) App() *App { return f.app }

// ID returns the file's ID.
func (f *File) ID() uuid.UUID { return f.record.ID }

// Record returns a copy of the persisted record.
func (f *File) Record() *FileRecord { return f.record.Clone() }

// Content returns a copy of the file's content fields.
func (f *File) Content() map[string]any { return maps.Clone(f.record.Content) }

// Property implements asset.PropertyReader.
func (f *File) Property(name string) (any, bool) {
	switch name {
	case "id":
		return f.record.ID.String(), true
	case "parent":
		return f.record.Parent, true
	case "filename":
		return f.record.Filename, true
	case "template":
		return f.record.Template, f.record.Template != ""
	case "content":
		return f.Content(), len(f.record.Content) > 0
	case "sort":
		return f.record.Sort, true
	}
	return nil, false
}

package asset

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/filetype"
)

var viewable = []string{"avif", "jpg", "jpeg", "gif", "png", "svg", "webp"}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// File is the generic handle for any file, local or remote.
type File struct {
	fs    afero.Fs
	root  string
	url   string
	model Model
	ops   operations
}

// NewFile creates a handle for props. A nil fs means the host filesystem.
func NewFile(fs afero.Fs, props Props) *File {
	f := newFile(fs, props)
	f.ops = f.operations()
	return f
}

func newFile(fs afero.Fs, props Props) *File {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &File{
		fs:    fs,
		root:  props.Root,
		url:   props.URL,
		model: props.Model,
	}
}

func (f *File) operations() operations {
	return operations{
		"root":        value(f.Root),
		"url":         value(f.URL),
		"exists":      value(f.Exists),
		"filename":    value(f.Filename),
		"name":        value(f.Name),
		"extension":   value(f.Extension),
		"type":        value(f.Type),
		"mime":        value(f.Mime),
		"size":        value(f.Size),
		"niceSize":    value(f.NiceSize),
		"read":        result(f.Read),
		"sha1":        result(f.SHA1),
		"base64":      result(f.Base64),
		"dataUri":     result(f.DataURI),
		"isReadable":  value(f.IsReadable),
		"isWritable":  value(f.IsWritable),
		"isResizable": value(f.IsResizable),
		"isViewable":  value(f.IsViewable),
		"toArray":     value(f.ToArray),
		"modified": func(args ...any) (any, error) {
			layout, ok, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			mod, err := f.Modified()
			if err != nil {
				return nil, err
			}
			if ok {
				return mod.Format(layout), nil
			}
			return mod, nil
		},
		"is": func(args ...any) (any, error) {
			v, ok, err := stringArg(args, 0)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("is requires an extension or mime type: %w", ErrInvalidArgument)
			}
			return f.Is(v), nil
		},
	}
}

// Lookup implements Handle.
func (f *File) Lookup(name string) (Operation, bool) {
	op, ok := f.ops[name]
	return op, ok
}

// Operations implements Handle.
func (f *File) Operations() []string {
	return f.ops.names()
}

// Model implements Handle.
func (f *File) Model() Model {
	return f.model
}

// Root returns the absolute path of the file, or "".
func (f *File) Root() string {
	return f.root
}

// URL returns the absolute URL of the file, or "".
func (f *File) URL() string {
	return f.url
}

// String returns the root if set, else the URL.
func (f *File) String() string {
	if f.root != "" {
		return f.root
	}
	return f.url
}

// Exists reports whether the root exists on the filesystem.
func (f *File) Exists() bool {
	if f.root == "" {
		return false
	}
	_, err := f.fs.Stat(f.root)
	return err == nil
}

// Filename returns the base name of the root, or of the URL path.
func (f *File) Filename() string {
	if f.root != "" {
		return filepath.Base(f.root)
	}
	if f.url == "" {
		return ""
	}

	p := f.url
	if u, err := url.Parse(f.url); err == nil {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}

// Name returns the filename without its extension.
func (f *File) Name() string {
	filename := f.Filename()
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Extension returns the lowercase extension without the dot.
func (f *File) Extension() string {
	return filetype.Extension(f.Filename())
}

// Type classifies the handle's own root or URL.
func (f *File) Type() string {
	if f.root != "" {
		return filetype.Detect(f.fs, f.root)
	}
	return filetype.Type(f.url)
}

// Mime returns the MIME type by extension, sniffing the content when the
// extension is unknown and the file exists.
func (f *File) Mime() string {
	if m := filetype.MimeByExtension(f.Extension()); m != "" {
		return m
	}
	if !f.Exists() {
		return ""
	}
	m, err := filetype.Sniff(f.fs, f.root)
	if err != nil {
		return ""
	}
	return m
}

// Size returns the file size in bytes, or 0 if the file does not exist.
func (f *File) Size() int64 {
	if f.root == "" {
		return 0
	}
	info, err := f.fs.Stat(f.root)
	if err != nil {
		return 0
	}
	return info.Size()
}

// NiceSize returns the size in human readable form, e.g. "1.5 KB".
func (f *File) NiceSize() string {
	return niceSize(f.Size())
}

func niceSize(size int64) string {
	if size < 1024 {
		return strconv.FormatInt(size, 10) + " B"
	}

	v := float64(size)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	v = float64(int64(v*100+0.5)) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[unit]
}

// Modified returns the modification time of the file.
func (f *File) Modified() (time.Time, error) {
	if f.root == "" {
		return time.Time{}, fmt.Errorf("cannot stat file without root: %w", os.ErrNotExist)
	}
	info, err := f.fs.Stat(f.root)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot stat file: %w", err)
	}
	return info.ModTime(), nil
}

// Read returns the content of the file.
func (f *File) Read() (string, error) {
	data, err := f.read()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *File) read() ([]byte, error) {
	if f.root == "" {
		return nil, fmt.Errorf("cannot read file without root: %w", os.ErrNotExist)
	}
	data, err := afero.ReadFile(f.fs, f.root)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	return data, nil
}

// SHA1 returns the hex encoded SHA-1 of the file content.
func (f *File) SHA1() (string, error) {
	data, err := f.read()
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Base64 returns the base64 encoded file content.
func (f *File) Base64() (string, error) {
	data, err := f.read()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURI returns the file content as a data URI.
func (f *File) DataURI() (string, error) {
	b64, err := f.Base64()
	if err != nil {
		return "", err
	}
	mimeType := f.Mime()
	if mimeType == "" {
		mimeType = filetype.MimeUnknown
	}
	return "data:" + mimeType + ";base64," + b64, nil
}

// IsReadable reports whether the file exists and carries a read permission bit.
func (f *File) IsReadable() bool {
	if f.root == "" {
		return false
	}
	info, err := f.fs.Stat(f.root)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o444 != 0
}

// IsWritable reports whether the file, or its directory when the file does
// not exist yet, carries a write permission bit.
func (f *File) IsWritable() bool {
	if f.root == "" {
		return false
	}
	info, err := f.fs.Stat(f.root)
	if err != nil {
		info, err = f.fs.Stat(filepath.Dir(f.root))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return info.Mode().Perm()&0o222 != 0
}

// IsResizable is false for generic files.
func (f *File) IsResizable() bool {
	return false
}

// IsViewable reports whether browsers can display the file inline.
func (f *File) IsViewable() bool {
	return slices.Contains(viewable, f.Extension())
}

// Is reports whether the file matches the given extension or MIME type.
func (f *File) Is(v string) bool {
	v = strings.ToLower(strings.TrimPrefix(v, "."))
	if v == "" {
		return false
	}
	if strings.Contains(v, "/") {
		return f.Mime() == v
	}
	ext := f.Extension()
	if ext == v {
		return true
	}
	return (ext == "jpg" && v == "jpeg") || (ext == "jpeg" && v == "jpg")
}

// ToArray returns the file's attributes as a map.
func (f *File) ToArray() map[string]any {
	arr := map[string]any{
		"exists":      f.Exists(),
		"extension":   f.Extension(),
		"filename":    f.Filename(),
		"isReadable":  f.IsReadable(),
		"isResizable": f.IsResizable(),
		"isViewable":  f.IsViewable(),
		"isWritable":  f.IsWritable(),
		"mime":        f.Mime(),
		"name":        f.Name(),
		"niceSize":    f.NiceSize(),
		"root":        f.root,
		"size":        f.Size(),
		"type":        f.Type(),
		"url":         f.url,
	}
	if mod, err := f.Modified(); err == nil {
		arr["modified"] = mod.Format(time.RFC3339)
	}
	return arr
}

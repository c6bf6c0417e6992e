// Package filetype maps file paths and URLs to coarse type tags such as
// "image" or "document".
package filetype

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Type tags returned by Type and Detect.
const (
	Archive  = "archive"
	Audio    = "audio"
	Code     = "code"
	Document = "document"
	Image    = "image"
	Video    = "video"
)

const (
	// MimeUnknown is the MIME type reported when nothing better is known.
	MimeUnknown = "application/octet-stream"

	sniffSize = 512
)

var types = map[string][]string{
	Archive:  {"gz", "gzip", "tar", "tgz", "zip"},
	Audio:    {"aif", "aiff", "m4a", "midi", "mp3", "wav"},
	Code:     {"css", "js", "json", "java", "htm", "html", "php", "rb", "py", "scss", "xml", "yaml", "yml"},
	Document: {"csv", "doc", "docx", "dotx", "indd", "md", "mdown", "pdf", "ppt", "pptx", "rtf", "txt", "xl", "xls", "xlsx", "xltx"},
	Image:    {"ai", "avif", "bmp", "gif", "eps", "ico", "j2k", "jp2", "jpeg", "jpg", "jpe", "png", "ps", "psd", "svg", "tif", "tiff", "webp"},
	Video:    {"avi", "flv", "m4v", "mov", "movie", "mpe", "mpg", "mp4", "ogg", "ogv", "swf", "webm"},
}

// mime.TypeByExtension depends on the host's mime tables, these are always known.
var mimes = map[string]string{
	"avif": "image/avif",
	"gif":  "image/gif",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"md":   "text/markdown",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"txt":  "text/plain",
	"webp": "image/webp",
	"yml":  "application/yaml",
	"yaml": "application/yaml",
}

var byExtension = func() map[string]string {
	m := make(map[string]string)
	for typ, exts := range types {
		for _, ext := range exts {
			m[ext] = typ
		}
	}
	return m
}()

// Extension returns the lowercase extension of a path or URL without the dot.
func Extension(pathOrURL string) string {
	p := pathOrURL
	if u, err := url.Parse(pathOrURL); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	ext := path.Ext(strings.ReplaceAll(p, "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Type classifies a path or URL by its extension. It returns "" when the
// input is empty or the extension is unknown.
func Type(pathOrURL string) string {
	if pathOrURL == "" {
		return ""
	}
	return byExtension[Extension(pathOrURL)]
}

// Detect works like Type but falls back to sniffing the content of path on
// fs when the extension gives no answer.
func Detect(fs afero.Fs, pathOrURL string) string {
	if typ := Type(pathOrURL); typ != "" || fs == nil || pathOrURL == "" {
		return typ
	}

	mimeType, err := Sniff(fs, pathOrURL)
	if err != nil {
		return ""
	}
	return FromMime(mimeType)
}

// FromMime maps a MIME type to a type tag.
func FromMime(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	major, minor, _ := strings.Cut(strings.TrimSpace(mimeType), "/")

	switch major {
	case "image":
		return Image
	case "video":
		return Video
	case "audio":
		return Audio
	}

	switch minor {
	case "zip", "gzip", "x-gzip", "x-tar":
		return Archive
	case "pdf", "plain", "csv", "markdown", "rtf":
		return Document
	case "json", "xml", "html", "css", "javascript", "yaml":
		return Code
	}
	return ""
}

// MimeByExtension returns the MIME type registered for ext, or "".
func MimeByExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return ""
	}
	if m, ok := mimes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension("." + ext); m != "" {
		m, _, _ = strings.Cut(m, ";")
		return m
	}
	return ""
}

// Sniff detects the MIME type of the file at path from its first bytes.
func Sniff(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return MimeUnknown, err
	}
	defer f.Close()

	buf := make([]byte, sniffSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return MimeUnknown, err
	}

	contentType, _, _ := strings.Cut(http.DetectContentType(buf[:n]), ";")
	return contentType, nil
}

package asset

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var resizable = []string{"jpg", "jpeg", "gif", "png", "webp", "avif"}

// Orientations reported by Dimensions.Orientation.
const (
	Landscape = "landscape"
	Portrait  = "portrait"
	Square    = "square"
)

// Dimensions of an image in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Ratio returns width divided by height, or 0 for an empty image.
func (d Dimensions) Ratio() float64 {
	if d.Height == 0 {
		return 0
	}
	return math.Round(float64(d.Width)/float64(d.Height)*100) / 100
}

// Orientation returns landscape, portrait or square, or "" when unknown.
func (d Dimensions) Orientation() string {
	switch {
	case d.Width == 0 || d.Height == 0:
		return ""
	case d.Width > d.Height:
		return Landscape
	case d.Width < d.Height:
		return Portrait
	default:
		return Square
	}
}

// ToArray returns the dimensions as a map.
func (d Dimensions) ToArray() map[string]any {
	return map[string]any{
		"width":       d.Width,
		"height":      d.Height,
		"ratio":       d.Ratio(),
		"orientation": d.Orientation(),
	}
}

// Exif holds the camera data embedded in an image. Fields are zero when the
// image carries no such data.
type Exif struct {
	Make        string    `json:"make,omitempty"`
	Model       string    `json:"model,omitempty"`
	ISO         int       `json:"iso,omitempty"`
	Exposure    string    `json:"exposure,omitempty"`
	Aperture    float64   `json:"aperture,omitempty"`
	FocalLength float64   `json:"focalLength,omitempty"`
	TakenAt     time.Time `json:"takenAt,omitempty"`
}

// Image is the handle variant for files classified as images.
type Image struct {
	*File

	dimOnce sync.Once
	dim     Dimensions
	dimErr  error
}

// NewImage creates an image handle for props. A nil fs means the host filesystem.
func NewImage(fs afero.Fs, props Props) *Image {
	img := &Image{File: newFile(fs, props)}
	img.ops = img.operations()
	return img
}

func (i *Image) operations() operations {
	ops := i.File.operations()

	ops["dimensions"] = value(i.Dimensions)
	ops["width"] = value(i.Width)
	ops["height"] = value(i.Height)
	ops["ratio"] = value(i.Ratio)
	ops["orientation"] = value(i.Orientation)
	ops["isPortrait"] = value(i.IsPortrait)
	ops["isLandscape"] = value(i.IsLandscape)
	ops["isSquare"] = value(i.IsSquare)
	ops["isResizable"] = value(i.IsResizable)
	ops["exif"] = result(i.Exif)
	ops["toArray"] = value(i.ToArray)
	ops["html"] = func(args ...any) (any, error) {
		attrs, err := attrsArg(args, 0)
		if err != nil {
			return nil, err
		}
		return i.HTML(attrs)
	}

	return ops
}

// String returns an <img> tag when the image has a URL, else its root.
func (i *Image) String() string {
	if s, err := i.HTML(nil); err == nil {
		return s
	}
	return i.root
}

// ReadDimensions decodes the image header. The result is cached on the handle.
func (i *Image) ReadDimensions() (Dimensions, error) {
	i.dimOnce.Do(func() {
		i.dim, i.dimErr = i.decodeDimensions()
	})
	return i.dim, i.dimErr
}

func (i *Image) decodeDimensions() (Dimensions, error) {
	if i.root == "" {
		return Dimensions{}, errors.New("cannot read dimensions without root")
	}
	file, err := i.fs.Open(i.root)
	if err != nil {
		return Dimensions{}, fmt.Errorf("cannot open image: %w", err)
	}
	defer file.Close()

	if i.Extension() == "svg" {
		return svgDimensions(file)
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return Dimensions{}, fmt.Errorf("cannot decode image: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func svgDimensions(r io.Reader) (Dimensions, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Dimensions{}, fmt.Errorf("cannot parse svg: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if el.Name.Local != "svg" {
			return Dimensions{}, errors.New("cannot parse svg: root element is not svg")
		}

		var d Dimensions
		var viewBox string
		for _, attr := range el.Attr {
			switch attr.Name.Local {
			case "width":
				d.Width = svgLength(attr.Value)
			case "height":
				d.Height = svgLength(attr.Value)
			case "viewBox":
				viewBox = attr.Value
			}
		}
		if (d.Width == 0 || d.Height == 0) && viewBox != "" {
			if parts := strings.Fields(strings.ReplaceAll(viewBox, ",", " ")); len(parts) == 4 {
				d.Width = svgLength(parts[2])
				d.Height = svgLength(parts[3])
			}
		}
		return d, nil
	}
}

func svgLength(v string) int {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}

// Dimensions returns the image size, zero when it cannot be read.
func (i *Image) Dimensions() Dimensions {
	d, _ := i.ReadDimensions()
	return d
}

// Width returns the image width in pixels.
func (i *Image) Width() int {
	return i.Dimensions().Width
}

// Height returns the image height in pixels.
func (i *Image) Height() int {
	return i.Dimensions().Height
}

// Ratio returns width divided by height.
func (i *Image) Ratio() float64 {
	return i.Dimensions().Ratio()
}

// Orientation returns landscape, portrait or square.
func (i *Image) Orientation() string {
	return i.Dimensions().Orientation()
}

func (i *Image) IsPortrait() bool  { return i.Orientation() == Portrait }
func (i *Image) IsLandscape() bool { return i.Orientation() == Landscape }
func (i *Image) IsSquare() bool    { return i.Orientation() == Square }

// IsResizable reports whether thumbnails can be generated for the format.
func (i *Image) IsResizable() bool {
	return slices.Contains(resizable, i.Extension())
}

// Exif reads the embedded camera data. Images without exif data yield an
// empty Exif and no error.
func (i *Image) Exif() (*Exif, error) {
	if i.root == "" {
		return &Exif{}, nil
	}
	file, err := i.fs.Open(i.root)
	if err != nil {
		return nil, fmt.Errorf("cannot open image: %w", err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return &Exif{}, nil
	}

	data := &Exif{}
	if tag, err := x.Get(exif.Make); err == nil {
		data.Make, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		data.Model, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		data.ISO, _ = tag.Int(0)
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if r, err := tag.Rat(0); err == nil {
			data.Exposure = r.RatString()
		}
	}
	if tag, err := x.Get(exif.FNumber); err == nil {
		if r, err := tag.Rat(0); err == nil {
			data.Aperture, _ = r.Float64()
		}
	}
	if tag, err := x.Get(exif.FocalLength); err == nil {
		if r, err := tag.Rat(0); err == nil {
			data.FocalLength, _ = r.Float64()
		}
	}
	if t, err := x.DateTime(); err == nil {
		data.TakenAt = t
	}
	return data, nil
}

// HTML returns an <img> tag for the image. An empty alt attribute is always set.
func (i *Image) HTML(attrs map[string]string) (string, error) {
	if i.url == "" {
		return "", fmt.Errorf("cannot build img tag for %q: %w", i.root, ErrMissingURL)
	}

	all := map[string]string{"alt": "", "src": i.url}
	for k, v := range attrs {
		if k == "src" {
			continue
		}
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<img")
	for _, k := range keys {
		fmt.Fprintf(&b, ` %s="%s"`, html.EscapeString(k), html.EscapeString(all[k]))
	}
	b.WriteString(">")
	return b.String(), nil
}

// ToArray returns the file attributes plus dimensions.
func (i *Image) ToArray() map[string]any {
	arr := i.File.ToArray()
	arr["dimensions"] = i.Dimensions().ToArray()
	arr["isResizable"] = i.IsResizable()
	return arr
}

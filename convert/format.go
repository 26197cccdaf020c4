/*
Package convert writes decoded BLP textures out as ordinary images, either
one file at a time or by scanning a whole directory tree.
*/
package convert

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image format.
type Format int

// Supported output formats.
const (
	PNG Format = iota
	GIF
	BMP
	TIFF
)

var formats = map[Format]string{
	PNG:  "png",
	GIF:  "gif",
	BMP:  "bmp",
	TIFF: "tiff",
}

func (f Format) String() string {
	if s, ok := formats[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension used for f, including the leading dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat returns the Format named by s, which may be a bare name such
// as "png" or a file name such as "out.png".
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(s)
	if ext := filepath.Ext(name); ext != "" {
		name = ext[1:]
	}
	if name == "tif" {
		name = "tiff"
	}
	for f, n := range formats {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("convert: unknown format %q", s)
}

// Encode writes m to w in format f. GIF output is reduced to 256 colors
// using a median cut palette.
func Encode(w io.Writer, m image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, m)
	case GIF:
		return gif.Encode(w, m, &gif.Options{
			NumColors: 256,
			Quantizer: &quantize.MedianCutQuantizer{},
			Drawer:    draw.Src,
		})
	case BMP:
		return bmp.Encode(w, m)
	case TIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("convert: unknown format %v", f)
}

/*
Package blp implements a decoder for BLP textures.

A BLP file starts with a four byte magic identifying one of three header
versions; "BLP0", "BLP1" or "BLP2". Versions 0 and 1 follow the magic with six
32-bit fields whereas version 2 packs the encoding, alpha depth, preferred
format and mipmap flag into single bytes after an internal version number that
must be 1. Every version then stores sixteen mipmap offsets and sixteen
mipmap sizes, the first zero offset terminating the chain.

Palette encoded files carry a 256 entry BGRA color table after the header and
each mipmap holds one index byte per pixel followed by a packed alpha region.
Block compressed files hold BC1, BC2 or BC3 data which is handed to a
block.Decoder. ARGB8888 files store the final pixels directly. JPEG encoded
files are recognised but cannot be decoded.

All pixel buffers returned by this package are four bytes per pixel in B, G,
R, A order.
*/
package blp

import (
	"errors"
	"fmt"
	"image/color"
)

const (
	magicLength  = 4
	numMipmaps   = 16
	paletteSize  = 256
	paletteBytes = paletteSize * 4

	// Fields following the magic for versions 0 and 1
	headerV1Bytes = 6 * 4
	// Internal version, four single byte fields, width & height
	headerV2Bytes = 4 + 4 + 2*4
	tableBytes    = numMipmaps * 4 * 2

	internalVersion = 1
)

var magics = [...]string{"BLP0", "BLP1", "BLP2"}

// Encoding is the color encoding used for the pixel data.
type Encoding uint8

// Color encodings.
const (
	EncodingJPEG Encoding = iota
	EncodingPalette
	EncodingDXT
	EncodingARGB8888
	EncodingARGB8888Alt
)

func (e Encoding) String() string {
	switch e {
	case EncodingJPEG:
		return "JPEG"
	case EncodingPalette:
		return "Palette"
	case EncodingDXT:
		return "DXT"
	case EncodingARGB8888:
		return "ARGB8888"
	case EncodingARGB8888Alt:
		return "ARGB8888 (alternate)"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

func parseEncoding(v uint32) (Encoding, error) {
	if v <= uint32(EncodingARGB8888Alt) {
		return Encoding(v), nil
	}
	return 0, FormatError(fmt.Sprintf("unknown color encoding %d", v))
}

// PixelFormat is the preferred pixel format recorded in the header.
type PixelFormat uint8

// Preferred pixel formats. Value 10 is unused.
const (
	FormatDXT1 PixelFormat = iota
	FormatDXT3
	FormatARGB8888
	FormatARGB1555
	FormatARGB4444
	FormatRGB565
	FormatA8
	FormatDXT5
	FormatUnspecified
	FormatARGB2565
	_
	FormatBC5
)

var pixelFormatNames = map[PixelFormat]string{
	FormatDXT1:        "DXT1",
	FormatDXT3:        "DXT3",
	FormatARGB8888:    "ARGB8888",
	FormatARGB1555:    "ARGB1555",
	FormatARGB4444:    "ARGB4444",
	FormatRGB565:      "RGB565",
	FormatA8:          "A8",
	FormatDXT5:        "DXT5",
	FormatUnspecified: "Unspecified",
	FormatARGB2565:    "ARGB2565",
	FormatBC5:         "BC5",
}

func (f PixelFormat) String() string {
	if s, ok := pixelFormatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(f))
}

func parsePixelFormat(v uint32) (PixelFormat, error) {
	if v <= 0xff {
		if _, ok := pixelFormatNames[PixelFormat(v)]; ok {
			return PixelFormat(v), nil
		}
	}
	return 0, FormatError(fmt.Sprintf("unknown pixel format %d", v))
}

func parseAlphaDepth(v uint32) (int, error) {
	switch v {
	case 0, 1, 4, 8:
		return int(v), nil
	}
	return 0, FormatError(fmt.Sprintf("unsupported alpha depth %d", v))
}

// Header holds the fixed fields common to every BLP version.
type Header struct {
	Version         int // 0, 1 or 2
	Encoding        Encoding
	AlphaDepth      int // 0, 1, 4 or 8
	PreferredFormat PixelFormat
	HasMips         bool
	Width           int
	Height          int
	MipOffsets      [numMipmaps]uint32
	MipSizes        [numMipmaps]uint32
}

// MipCount returns the number of leading non-zero mipmap offsets.
func (h *Header) MipCount() int {
	n := 0
	for n < numMipmaps && h.MipOffsets[n] != 0 {
		n++
	}
	return n
}

// Palette is the color table used by palette encoded files.
type Palette [paletteSize]color.NRGBA

// ErrClosed is returned by any operation on a File after Close.
var ErrClosed = errors.New("blp: file already closed")

// A FormatError reports that the input is not a valid BLP file.
type FormatError string

func (e FormatError) Error() string { return "blp: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented
// BLP feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "blp: unsupported feature: " + string(e) }

// An IOError reports a failed or short read from the underlying source.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return "blp: " + e.Op + ": " + e.Err.Error() }

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

/*
Package block implements decompression of the fixed-ratio 4 by 4 texel block
formats found inside BLP textures.

Each block stores 16 texels in either 8 bytes (BC1, also known as DXT1) or 16
bytes (BC2/DXT3 and BC3/DXT5). Blocks are laid out left to right, top to
bottom, and a surface whose dimensions are not a multiple of four is padded
out to the next whole block.
*/
package block

import (
	"errors"
	"fmt"

	"github.com/mauserzjeh/dxt"
)

// Format identifies a block compression scheme.
type Format int

// Supported block formats.
const (
	BC1 Format = iota + 1 // RGB with optional 1-bit alpha
	BC2                   // RGB with explicit 4-bit alpha
	BC3                   // RGB with interpolated alpha
)

const (
	blockWidth  = 4
	blockHeight = blockWidth
)

var errUnknownFormat = errors.New("block: unknown format")

func (f Format) String() string {
	switch f {
	case BC1:
		return "BC1"
	case BC2:
		return "BC2"
	case BC3:
		return "BC3"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// BlockSize returns the number of bytes used to store one block, or 0 if f
// is not a known format.
func (f Format) BlockSize() int {
	switch f {
	case BC1:
		return 8
	case BC2, BC3:
		return 16
	default:
		return 0
	}
}

// Size returns the number of bytes needed to store a width by height surface
// in format f.
func (f Format) Size(width, height int) int {
	return blocks(width) * blocks(height) * f.BlockSize()
}

func blocks(n int) int {
	return (n + blockWidth - 1) / blockWidth
}

// A Decoder turns block compressed data into RGBA pixels. The returned slice
// holds exactly width*height*4 bytes in R, G, B, A order.
type Decoder interface {
	Decode(f Format, width, height int, data []byte) ([]byte, error)
}

// DecoderFunc adapts an ordinary function to the Decoder interface.
type DecoderFunc func(f Format, width, height int, data []byte) ([]byte, error)

// Decode calls fn(f, width, height, data).
func (fn DecoderFunc) Decode(f Format, width, height int, data []byte) ([]byte, error) {
	return fn(f, width, height, data)
}

// DXT is a Decoder backed by github.com/mauserzjeh/dxt.
type DXT struct{}

// Decode implements the Decoder interface.
func (DXT) Decode(f Format, width, height int, data []byte) ([]byte, error) {
	var fn func([]byte, uint, uint) ([]byte, error)
	switch f {
	case BC1:
		fn = dxt.DecodeDXT1
	case BC2:
		fn = dxt.DecodeDXT3
	case BC3:
		fn = dxt.DecodeDXT5
	default:
		return nil, errUnknownFormat
	}

	if width < 0 || height < 0 {
		return nil, fmt.Errorf("block: invalid dimensions %dx%d", width, height)
	}
	if width == 0 || height == 0 {
		return []byte{}, nil
	}

	if need := f.Size(width, height); len(data) < need {
		return nil, fmt.Errorf("block: %s needs %d bytes for %dx%d, got %d", f, need, width, height, len(data))
	}

	// The codec works on whole blocks so decode the padded surface and crop
	pw, ph := blocks(width)*blockWidth, blocks(height)*blockHeight

	b, err := fn(data[:f.Size(width, height)], uint(pw), uint(ph))
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	if len(b) < pw*ph*4 {
		return nil, fmt.Errorf("block: %s decoder returned %d bytes, want %d", f, len(b), pw*ph*4)
	}

	if pw == width && ph == height {
		return b[:width*height*4], nil
	}

	return crop(b, pw, width, height), nil
}

func crop(b []byte, stride, width, height int) []byte {
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		copy(out[y*width*4:(y+1)*width*4], b[y*stride*4:])
	}
	return out
}

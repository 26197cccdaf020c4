package blp

import (
	"fmt"
	"image"

	"github.com/bodgit/blp/block"
)

// Bitmap is a decoded mipmap level. Pix holds Width*Height pixels of four
// bytes each in B, G, R, A order with no padding between rows.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// NRGBA returns a copy of the bitmap as an *image.NRGBA.
func (b *Bitmap) NRGBA() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(m.Pix, b.Pix)
	swapRB(m.Pix)
	return m
}

// swapRB exchanges the first and third byte of every four byte pixel.
func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

func (f *File) reconstruct(width, height int, data []byte) ([]byte, error) {
	switch f.header.Encoding {
	case EncodingPalette:
		return f.palettePixels(width, height, data)
	case EncodingDXT:
		return f.blockPixels(width, height, data)
	case EncodingARGB8888, EncodingARGB8888Alt:
		// Already stored as BGRA
		n := width * height * 4
		if len(data) < n {
			return nil, FormatError(fmt.Sprintf("%s mipmap needs %d bytes, got %d", f.header.Encoding, n, len(data)))
		}
		return data[:n], nil
	case EncodingJPEG:
		return nil, UnsupportedError("jpeg color encoding")
	}
	return nil, FormatError(fmt.Sprintf("unknown color encoding %d", f.header.Encoding))
}

func alphaBytes(depth, n int) int {
	switch depth {
	case 1:
		return (n + 7) >> 3
	case 4:
		return (n + 1) >> 1
	case 8:
		return n
	}
	return 0
}

func alphaAt(depth int, alpha []byte, i int) byte {
	switch depth {
	case 1:
		if (alpha[i>>3]>>(i&7))&1 == 0 {
			return 0x00
		}
		return 0xff
	case 4:
		// Even pixels use the low nibble scaled up, odd pixels the high
		// nibble as is
		if i&1 == 0 {
			return (alpha[i>>1] & 0x0f) << 4
		}
		return alpha[i>>1] & 0xf0
	case 8:
		return alpha[i]
	}
	return 0xff
}

func (f *File) palettePixels(width, height int, data []byte) ([]byte, error) {
	n := width * height
	if need := n + alphaBytes(f.header.AlphaDepth, n); len(data) < need {
		return nil, FormatError(fmt.Sprintf("palette mipmap needs %d bytes, got %d", need, len(data)))
	}

	alpha := data[n:]
	pix := make([]byte, n*4)
	for i, j := 0, 0; i < n; i, j = i+1, j+4 {
		c := f.palette[data[i]]
		pix[j+0] = c.B
		pix[j+1] = c.G
		pix[j+2] = c.R
		pix[j+3] = alphaAt(f.header.AlphaDepth, alpha, i)
	}
	return pix, nil
}

func (f *File) blockFormat() block.Format {
	switch {
	case f.header.AlphaDepth > 1 && f.header.PreferredFormat == FormatDXT5:
		return block.BC3
	case f.header.AlphaDepth > 1:
		return block.BC2
	default:
		return block.BC1
	}
}

func (f *File) blockPixels(width, height int, data []byte) ([]byte, error) {
	format := f.blockFormat()
	pix, err := f.blocks.Decode(format, width, height, data)
	if err != nil {
		return nil, fmt.Errorf("blp: decoding %s blocks: %w", format, err)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("blp: %s decoder returned %d bytes for %dx%d", format, len(pix), width, height)
	}
	out := make([]byte, len(pix))
	for i := 0; i < len(pix); i += 4 {
		out[i+0] = pix[i+2]
		out[i+1] = pix[i+1]
		out[i+2] = pix[i+0]
		out[i+3] = pix[i+3]
	}
	return out, nil
}

package blp

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderVersions(t *testing.T) {
	for version := 0; version < len(magics); version++ {
		t.Run(magics[version], func(t *testing.T) {
			tf := testFile{
				version:    version,
				encoding:   uint32(EncodingPalette),
				alphaDepth: 4,
				format:     uint32(FormatUnspecified),
				hasMips:    1,
				width:      4,
				height:     2,
				mips: [][]byte{
					// 8 indices followed by 4 bytes of nibble alpha
					{0, 1, 2, 3, 4, 5, 6, 7, 0x21, 0x43, 0x65, 0x87},
					{0, 1, 0xf1},
				},
			}
			tf.palette[1] = 0x80ff4020

			f, err := tf.open()
			require.NoError(t, err)
			defer f.Close()

			h := f.Header()
			assert.Equal(t, version, h.Version)
			assert.Equal(t, EncodingPalette, h.Encoding)
			assert.Equal(t, 4, h.AlphaDepth)
			assert.Equal(t, FormatUnspecified, h.PreferredFormat)
			assert.True(t, h.HasMips)
			assert.Equal(t, 4, h.Width)
			assert.Equal(t, 2, h.Height)
			assert.Equal(t, uint32(12), h.MipSizes[0])
			assert.Equal(t, uint32(3), h.MipSizes[1])
			assert.Equal(t, h.MipOffsets[0]+12, h.MipOffsets[1])
			assert.Equal(t, 2, f.MipCount())

			require.NotNil(t, f.Palette())
			assert.Equal(t, color.NRGBA{R: 0xff, G: 0x40, B: 0x20, A: 0x80}, f.Palette()[1])
			assert.Nil(t, f.JPEGHeader())

			b, err := f.Pixels(0)
			require.NoError(t, err)
			// Pixel 0 takes the low nibble shifted, pixel 1 the high nibble
			assert.Equal(t, byte(0x10), b.Pix[0*4+3])
			assert.Equal(t, byte(0x20), b.Pix[1*4+3])
			assert.Equal(t, byte(0x70), b.Pix[6*4+3])
			assert.Equal(t, byte(0x80), b.Pix[7*4+3])
			// Palette entry 1 in B, G, R order
			assert.Equal(t, []byte{0x20, 0x40, 0xff}, b.Pix[4:7])
		})
	}
}

func TestHeaderJPEG(t *testing.T) {
	tf := testFile{
		version:  1,
		encoding: uint32(EncodingJPEG),
		width:    8,
		height:   8,
		jpeg:     []byte{0xff, 0xd8, 0xff, 0xe0},
		mips:     [][]byte{{0x01, 0x02}},
	}

	f, err := tf.open()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, tf.jpeg, f.JPEGHeader())
	assert.Nil(t, f.Palette())
}

func TestHeaderFormatErrors(t *testing.T) {
	tables := map[string]testFile{
		"internal version": {version: 2, internal: 3, encoding: uint32(EncodingDXT)},
		"encoding":         {version: 1, encoding: 5},
		"encoding v2":      {version: 2, encoding: 0xff},
		"alpha depth":      {version: 1, encoding: uint32(EncodingARGB8888), alphaDepth: 3},
		"pixel format":     {version: 2, encoding: uint32(EncodingARGB8888), format: 10},
		"negative width":   {version: 1, encoding: uint32(EncodingARGB8888), width: -1},
		"negative height":  {version: 2, encoding: uint32(EncodingARGB8888), height: -4},
	}

	for name, tf := range tables {
		t.Run(name, func(t *testing.T) {
			_, err := tf.open()
			var fe FormatError
			assert.True(t, errors.As(err, &fe), "got %v", err)
		})
	}
}

func TestHeaderInternalVersionReported(t *testing.T) {
	_, err := testFile{version: 2, internal: 7}.open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7")
}

func TestHeaderBadMagic(t *testing.T) {
	for _, magic := range []string{"BLP3", "blp2", "PNG\x00"} {
		b := testFile{version: 1, encoding: uint32(EncodingARGB8888)}.bytes()
		copy(b, magic)

		_, err := NewFile(bytes.NewReader(b))
		assert.Equal(t, FormatError("unrecognized container"), err)
	}
}

func TestHeaderTruncated(t *testing.T) {
	tf := testFile{
		version:    2,
		encoding:   uint32(EncodingPalette),
		alphaDepth: 8,
		width:      1,
		height:     1,
		mips:       [][]byte{{0x00, 0xff}},
	}
	b := tf.bytes()
	headerEnd := magicLength + headerV2Bytes + tableBytes + paletteBytes

	for _, n := range []int{0, 2, magicLength + 3, magicLength + headerV2Bytes + 10, headerEnd - 1} {
		_, err := NewFile(bytes.NewReader(b[:n]))
		var ioe *IOError
		if assert.True(t, errors.As(err, &ioe), "length %d: got %v", n, err) {
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
		}
	}

	jpeg := testFile{version: 0, encoding: uint32(EncodingJPEG), jpeg: make([]byte, 100)}.bytes()
	_, err := NewFile(bytes.NewReader(jpeg[:len(jpeg)-1]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestHeaderNegativeJPEGSize(t *testing.T) {
	b := testFile{version: 1, encoding: uint32(EncodingJPEG)}.bytes()
	copy(b[len(b)-4:], []byte{0xff, 0xff, 0xff, 0xff})

	_, err := NewFile(bytes.NewReader(b))
	var fe FormatError
	assert.True(t, errors.As(err, &fe), "got %v", err)
}

func TestDecodeConfig(t *testing.T) {
	b := testFile{version: 2, encoding: uint32(EncodingDXT), format: uint32(FormatDXT5), width: 64, height: 32}.bytes()

	// Only the fixed fields are needed
	c, err := DecodeConfig(bytes.NewReader(b[:magicLength+headerV2Bytes]))
	require.NoError(t, err)
	assert.Equal(t, 64, c.Width)
	assert.Equal(t, 32, c.Height)
	assert.Equal(t, color.NRGBAModel, c.ColorModel)
}

package blp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
	"math"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// readN reads exactly n bytes from r. Sizes come from the file itself so the
// buffer only grows as data actually arrives.
func readN(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

type decoder struct {
	r io.Reader

	header     Header
	palette    *Palette
	jpegHeader []byte

	// Enough to hold the palette, the largest fixed read
	tmp [paletteBytes]byte
}

func (d *decoder) read(op string, n int) ([]byte, error) {
	if err := readFull(d.r, d.tmp[:n]); err != nil {
		return nil, &IOError{Op: op, Err: err}
	}
	return d.tmp[:n], nil
}

func (d *decoder) readMagic() error {
	b, err := d.read("reading magic", magicLength)
	if err != nil {
		return err
	}
	for v, m := range magics {
		if string(b) == m {
			d.header.Version = v
			return nil
		}
	}
	return FormatError("unrecognized container")
}

func dimension(v uint32) (int, error) {
	if v > math.MaxInt32 {
		return 0, FormatError(fmt.Sprintf("negative dimension %d", int32(v)))
	}
	return int(v), nil
}

func (d *decoder) setFields(encoding, alphaDepth, format, hasMips, width, height uint32) error {
	var err error
	if d.header.Encoding, err = parseEncoding(encoding); err != nil {
		return err
	}
	if d.header.AlphaDepth, err = parseAlphaDepth(alphaDepth); err != nil {
		return err
	}
	if d.header.PreferredFormat, err = parsePixelFormat(format); err != nil {
		return err
	}
	d.header.HasMips = hasMips != 0
	if d.header.Width, err = dimension(width); err != nil {
		return err
	}
	if d.header.Height, err = dimension(height); err != nil {
		return err
	}
	return nil
}

func (d *decoder) readFieldsV1() error {
	b, err := d.read("reading header", headerV1Bytes)
	if err != nil {
		return err
	}
	le := binary.LittleEndian
	return d.setFields(le.Uint32(b[0:]), le.Uint32(b[4:]), le.Uint32(b[16:]), le.Uint32(b[20:]), le.Uint32(b[8:]), le.Uint32(b[12:]))
}

func (d *decoder) readFieldsV2() error {
	b, err := d.read("reading header", headerV2Bytes)
	if err != nil {
		return err
	}
	le := binary.LittleEndian
	if v := le.Uint32(b[0:]); v != internalVersion {
		return FormatError(fmt.Sprintf("internal version should be %d but %d was found", internalVersion, v))
	}
	return d.setFields(uint32(b[4]), uint32(b[5]), uint32(b[6]), uint32(b[7]), le.Uint32(b[8:]), le.Uint32(b[12:]))
}

func (d *decoder) readMipTables() error {
	b, err := d.read("reading mipmap tables", tableBytes)
	if err != nil {
		return err
	}
	for i := 0; i < numMipmaps; i++ {
		d.header.MipOffsets[i] = binary.LittleEndian.Uint32(b[i*4:])
		d.header.MipSizes[i] = binary.LittleEndian.Uint32(b[(numMipmaps+i)*4:])
	}
	return nil
}

func (d *decoder) readPalette() error {
	b, err := d.read("reading palette", paletteBytes)
	if err != nil {
		return err
	}
	d.palette = new(Palette)
	for i := range d.palette {
		// Each entry is a little-endian word packed as AARRGGBB
		c := binary.LittleEndian.Uint32(b[i*4:])
		d.palette[i] = color.NRGBA{
			R: uint8(c >> 16),
			G: uint8(c >> 8),
			B: uint8(c),
			A: uint8(c >> 24),
		}
	}
	return nil
}

func (d *decoder) readJPEGHeader() error {
	b, err := d.read("reading jpeg header size", 4)
	if err != nil {
		return err
	}
	n := int32(binary.LittleEndian.Uint32(b))
	if n < 0 {
		return FormatError(fmt.Sprintf("negative jpeg header size %d", n))
	}

	if d.jpegHeader, err = readN(d.r, int64(n)); err != nil {
		return &IOError{Op: "reading jpeg header", Err: err}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readMagic(); err != nil {
		return err
	}

	readFields := d.readFieldsV1
	if d.header.Version == 2 {
		readFields = d.readFieldsV2
	}
	if err := readFields(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if err := d.readMipTables(); err != nil {
		return err
	}

	switch d.header.Encoding {
	case EncodingPalette:
		return d.readPalette()
	case EncodingJPEG:
		return d.readJPEGHeader()
	}

	return nil
}

package blp

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"io/ioutil"
)

func init() {
	image.RegisterFormat("blp", "BLP?", Decode, DecodeConfig)
}

// Hides any Close method so the caller keeps ownership of the reader
type readSeeker struct {
	io.ReadSeeker
}

// Decode reads the largest mipmap level of a BLP texture from r and returns
// it as an image.Image. If r is not an io.ReadSeeker it is read into memory
// first.
func Decode(r io.Reader) (image.Image, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, &IOError{Op: "reading file", Err: err}
		}
		rs = bytes.NewReader(b)
	}

	f, err := NewFile(readSeeker{rs})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := f.Pixels(0)
	if err != nil {
		return nil, err
	}
	return b.NRGBA(), nil
}

// DecodeConfig returns the color model and dimensions of a BLP texture
// without reading any pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      d.header.Width,
		Height:     d.header.Height,
	}, nil
}

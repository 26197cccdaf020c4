package blp

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/bodgit/blp/block"
)

// File is an open BLP texture. The header is parsed once when the File is
// created and pixel data is read from the underlying source on demand.
//
// A File is not safe for concurrent use; every call seeks the shared source.
//
// Header, Palette and JPEGHeader return metadata parsed when the File was
// created and remain valid after Close. Everything that reads mipmap data
// fails with ErrClosed once the File is closed.
type File struct {
	r       io.ReadSeeker
	blocks  block.Decoder
	closed  bool
	header  Header
	palette *Palette
	jpeg    []byte
}

// An Option configures a File.
type Option func(*File)

// WithBlockDecoder sets the decoder used for block compressed textures. The
// default is block.DXT.
func WithBlockDecoder(d block.Decoder) Option {
	return func(f *File) {
		f.blocks = d
	}
}

// NewFile parses the BLP header from r and returns a File that owns r. If r
// implements io.Closer it is closed by Close, or immediately if the header
// cannot be parsed.
func NewFile(r io.ReadSeeker, options ...Option) (*File, error) {
	f, err := newFile(r, options...)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	return f, nil
}

func newFile(r io.ReadSeeker, options ...Option) (*File, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &IOError{Op: "seeking to header", Err: err}
	}

	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}

	f := &File{
		r:       r,
		blocks:  block.DXT{},
		header:  d.header,
		palette: d.palette,
		jpeg:    d.jpegHeader,
	}
	for _, o := range options {
		o(f)
	}
	return f, nil
}

// Open opens the named file and parses its header.
func Open(name string, options ...Option) (*File, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return NewFile(r, options...)
}

// ReadFile opens the named file, decodes the requested mipmap level and
// closes the file again.
func ReadFile(name string, level int, options ...Option) (*Bitmap, error) {
	f, err := Open(name, options...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Pixels(level)
}

// Close releases the underlying source. Any further use of f returns
// ErrClosed.
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	if c, ok := f.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Header returns a copy of the parsed header.
func (f *File) Header() Header {
	return f.header
}

// Palette returns the color table, or nil if the file is not palette encoded.
func (f *File) Palette() *Palette {
	return f.palette
}

// JPEGHeader returns the shared JPEG header stored by JPEG encoded files.
// It is kept verbatim and is otherwise unused.
func (f *File) JPEGHeader() []byte {
	return f.jpeg
}

// MipCount returns the number of mipmap levels present, or 0 once f has
// been closed. Header().MipCount() still reports the stored count.
func (f *File) MipCount() int {
	if f.closed {
		return 0
	}
	return f.header.MipCount()
}

// Mip describes a single mipmap level.
type Mip struct {
	Level  int
	Width  int
	Height int
	Offset uint32
	// Size is the number of bytes read for this level. For DXT encoded
	// files it is computed from the dimensions rather than taken from the
	// header.
	Size int
}

// Bounds returns the pixel rectangle of the mipmap level.
func (m Mip) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// Mip returns the mipmap level closest to level, clamping it into the range
// of levels present.
func (f *File) Mip(level int) (Mip, error) {
	if f.closed {
		return Mip{}, ErrClosed
	}

	n := f.MipCount()
	if n == 0 {
		return Mip{}, FormatError("no mipmaps")
	}
	if level >= n {
		level = n - 1
	}
	if level < 0 {
		level = 0
	}

	m := Mip{
		Level:  level,
		Width:  f.header.Width >> level,
		Height: f.header.Height >> level,
		Offset: f.header.MipOffsets[level],
		Size:   int(f.header.MipSizes[level]),
	}

	if f.header.Encoding == EncodingDXT {
		switch f.header.PreferredFormat {
		case FormatDXT1:
			m.Size = block.BC1.Size(m.Width, m.Height)
		case FormatDXT3, FormatDXT5:
			m.Size = block.BC2.Size(m.Width, m.Height)
		}
	}

	return m, nil
}

func (f *File) readMip(m Mip) ([]byte, error) {
	if _, err := f.r.Seek(int64(m.Offset), io.SeekStart); err != nil {
		return nil, &IOError{Op: fmt.Sprintf("seeking to mipmap %d", m.Level), Err: err}
	}
	b, err := readN(f.r, int64(m.Size))
	if err != nil {
		return nil, &IOError{Op: fmt.Sprintf("reading mipmap %d", m.Level), Err: err}
	}
	return b, nil
}

// Pixels decodes the requested mipmap level, clamped to the levels present,
// and returns its pixels in B, G, R, A order.
func (f *File) Pixels(level int) (*Bitmap, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if f.header.Encoding == EncodingJPEG {
		return nil, UnsupportedError("jpeg color encoding")
	}

	m, err := f.Mip(level)
	if err != nil {
		return nil, err
	}

	data, err := f.readMip(m)
	if err != nil {
		return nil, err
	}

	pix, err := f.reconstruct(m.Width, m.Height, data)
	if err != nil {
		return nil, err
	}

	return &Bitmap{
		Width:  m.Width,
		Height: m.Height,
		Pix:    pix,
	}, nil
}

package convert

import (
	"crypto/sha1"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/blp"
	"github.com/bodgit/blp/catalog"
)

// Options control how textures are converted.
type Options struct {
	// Format of the written images
	Format Format
	// Level is the mipmap level to write, clamped to the levels present
	Level int
	// Workers is the number of files converted in parallel by Scan. Zero
	// means one per CPU.
	Workers int
}

// Converter decodes BLP textures and writes them out as images.
type Converter struct {
	opts   Options
	db     *catalog.DB
	logger *log.Logger
}

// New returns a Converter. db may be nil in which case nothing is recorded.
func New(opts Options, db *catalog.DB, logger *log.Logger) *Converter {
	return &Converter{
		opts:   opts,
		db:     db,
		logger: logger,
	}
}

// catalogPath returns the key name is recorded under in the catalog, the
// absolute slash separated path.
func catalogPath(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return filepath.ToSlash(filepath.Clean(name))
}

// open opens name and returns it along with the hex SHA-1 of its
// (decompressed) content.
func open(name string) (io.ReadSeekCloser, string, error) {
	src, err := OpenSource(name)
	if err != nil {
		return nil, "", err
	}

	h := sha1.New()
	if _, err := io.Copy(h, src); err != nil {
		src.Close()
		return nil, "", err
	}

	return src, fmt.Sprintf("%X", h.Sum(nil)), nil
}

// decode takes ownership of src. The returned entry is non-nil even when
// decoding fails so the failure can be recorded.
func (c *Converter) decode(path, sum string, src io.ReadSeekCloser) (*catalog.Entry, image.Image, error) {
	f, err := blp.NewFile(src)
	if err != nil {
		return &catalog.Entry{Path: path, SHA1: sum, Err: err.Error()}, nil, err
	}
	defer f.Close()

	entry := catalog.EntryFromHeader(path, sum, f.Header())

	b, err := f.Pixels(c.opts.Level)
	if err != nil {
		entry.Err = err.Error()
		return entry, nil, err
	}

	return entry, b.NRGBA(), nil
}

func (c *Converter) write(name string, m image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, m, c.opts.Format)
}

func (c *Converter) record(entry *catalog.Entry) error {
	if c.db == nil {
		return nil
	}
	return c.db.Put(entry)
}

// ConvertFile converts the texture in to an image written to out. A texture
// that cannot be decoded is still recorded in the catalog.
func (c *Converter) ConvertFile(in, out string) error {
	src, sum, err := open(in)
	if err != nil {
		return err
	}

	entry, m, err := c.decode(catalogPath(in), sum, src)
	if err != nil {
		if rerr := c.record(entry); rerr != nil {
			c.logger.Printf("Unable to record \"%s\": %v\n", in, rerr)
		}
		return err
	}

	if err := c.write(out, m); err != nil {
		return err
	}

	return c.record(entry)
}

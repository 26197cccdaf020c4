package convert

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	blpExt  = ".blp"
	zstdExt = ".zst"
)

// isTexture reports whether name looks like a BLP texture, optionally zstd
// compressed.
func isTexture(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, blpExt) || strings.HasSuffix(name, blpExt+zstdExt)
}

// trimTexture removes the texture extension(s) from name.
func trimTexture(name string) string {
	if strings.EqualFold(filepath.Ext(name), zstdExt) {
		name = name[:len(name)-len(zstdExt)]
	}
	if strings.EqualFold(filepath.Ext(name), blpExt) {
		name = name[:len(name)-len(blpExt)]
	}
	return name
}

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }

// OpenSource opens name for random access. Files ending in .zst are
// decompressed into memory first.
func OpenSource(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(filepath.Ext(name), zstdExt) {
		return f, nil
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	b, err := io.ReadAll(d)
	if err != nil {
		return nil, err
	}

	return nopCloser{bytes.NewReader(b)}, nil
}

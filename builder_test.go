package blp

import (
	"bytes"
	"encoding/binary"
)

// testFile describes a synthetic BLP file. Mipmap payloads are laid out
// back to back after the header and the offset and size tables are filled
// in automatically unless offsets is set.
type testFile struct {
	version    int
	encoding   uint32
	alphaDepth uint32
	format     uint32
	hasMips    uint32
	width      int32
	height     int32
	palette    [paletteSize]uint32
	jpeg       []byte
	mips       [][]byte

	// Overrides, used to build broken files
	internal uint32
	offsets  *[numMipmaps]uint32
	sizes    *[numMipmaps]uint32
}

func (tf testFile) bytes() []byte {
	b := new(bytes.Buffer)
	le := binary.LittleEndian

	b.WriteString(magics[tf.version])
	if tf.version == 2 {
		internal := tf.internal
		if internal == 0 {
			internal = internalVersion
		}
		binary.Write(b, le, internal)
		b.Write([]byte{byte(tf.encoding), byte(tf.alphaDepth), byte(tf.format), byte(tf.hasMips)})
		binary.Write(b, le, tf.width)
		binary.Write(b, le, tf.height)
	} else {
		binary.Write(b, le, []uint32{tf.encoding, tf.alphaDepth})
		binary.Write(b, le, []int32{tf.width, tf.height})
		binary.Write(b, le, []uint32{tf.format, tf.hasMips})
	}

	var extra []byte
	switch Encoding(tf.encoding) {
	case EncodingPalette:
		e := new(bytes.Buffer)
		binary.Write(e, le, tf.palette)
		extra = e.Bytes()
	case EncodingJPEG:
		extra = make([]byte, 4, 4+len(tf.jpeg))
		le.PutUint32(extra, uint32(len(tf.jpeg)))
		extra = append(extra, tf.jpeg...)
	}

	var offsets, sizes [numMipmaps]uint32
	offset := uint32(b.Len() + tableBytes + len(extra))
	for i, m := range tf.mips {
		offsets[i] = offset
		sizes[i] = uint32(len(m))
		offset += uint32(len(m))
	}
	if tf.offsets != nil {
		offsets = *tf.offsets
	}
	if tf.sizes != nil {
		sizes = *tf.sizes
	}
	binary.Write(b, le, offsets)
	binary.Write(b, le, sizes)

	b.Write(extra)
	for _, m := range tf.mips {
		b.Write(m)
	}

	return b.Bytes()
}

func (tf testFile) open(options ...Option) (*File, error) {
	return NewFile(bytes.NewReader(tf.bytes()), options...)
}

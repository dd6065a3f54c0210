package npy

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderAlignment(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {64, 64}, {12345, 6789}} {
		h := header(size[0], size[1])
		assert.Equal(t, 0, len(h)%alignment)
		assert.Equal(t, byte('\n'), h[len(h)-1])
	}
}

func TestEncode(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 3, 2), nil)
	copy(m.Pix, []uint8{0, 1, 2, 3, 4, 5})

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))

	out := b.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("\x93NUMPY\x01\x00")))
	assert.Contains(t, string(out), "'shape': (2, 3)")
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, out[len(out)-6:])

	n, err := Decode(b)
	require.Nil(t, err)
	assert.Equal(t, m.Rect, n.Rect)
	assert.Equal(t, m.Pix, n.Pix)
}

func TestEncodeSubImage(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 4, 4), nil)
	for i := range m.Pix {
		m.Pix[i] = uint8(i)
	}
	sub := m.SubImage(image.Rect(1, 1, 3, 3)).(*image.Paletted)

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, sub))

	n, err := Decode(b)
	require.Nil(t, err)
	assert.Equal(t, []uint8{5, 6, 9, 10}, n.Pix)
}

func raw(version byte, dict string) []byte {
	b := new(bytes.Buffer)
	b.WriteString(magic)
	b.Write([]byte{version, 0})
	binary.Write(b, binary.LittleEndian, uint16(len(dict)))
	b.WriteString(dict)
	return b.Bytes()
}

func TestDecodeInvalid(t *testing.T) {
	tables := map[string][]byte{
		"magic":   append([]byte("\x93NUMPX"), 1, 0, 0, 0),
		"version": raw(3, "{'descr': '|u1', 'fortran_order': False, 'shape': (1, 1), }"),
		"descr":   raw(1, "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 1), }"),
		"order":   raw(1, "{'descr': '|u1', 'fortran_order': True, 'shape': (1, 1), }"),
		"shape":   raw(1, "{'descr': '|u1', 'fortran_order': False, 'shape': (1,), }"),
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(table))
			assert.True(t, errors.Is(err, ErrFormat), "unexpected error %v", err)
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 8, 8), nil)
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))

	_, err := Decode(bytes.NewReader(b.Bytes()[:b.Len()-1]))
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

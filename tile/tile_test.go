package tile

import (
	"bytes"
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(w, h int) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, w, h), nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetColorIndex(x, y, uint8((x+y)%colorsPerPalette))
		}
	}
	return m
}

func TestEncode(t *testing.T) {
	m := pattern(16, 8)

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))
	require.Equal(t, headerBytes+2*tileBytes, b.Len())

	out := b.Bytes()
	assert.Equal(t, []byte{2, 0, 1, 0}, out[:headerBytes])
	// First row of the first tile
	assert.Equal(t, []byte{0x01, 0x23, 0x45, 0x67}, out[headerBytes:headerBytes+4])
	// First row of the second tile
	assert.Equal(t, []byte{0x89, 0xab, 0xcd, 0xef}, out[headerBytes+tileBytes:headerBytes+tileBytes+4])
}

func TestRoundTrip(t *testing.T) {
	m := pattern(64, 128)

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))

	config, err := DecodeConfig(bytes.NewReader(b.Bytes()))
	require.Nil(t, err)
	assert.Equal(t, 64, config.Width)
	assert.Equal(t, 128, config.Height)

	n, err := Decode(b)
	require.Nil(t, err)
	assert.Equal(t, m.Rect, n.Rect)
	assert.Equal(t, m.Pix, n.Pix)
}

func TestRoundTripSubImage(t *testing.T) {
	m := pattern(32, 32).SubImage(image.Rect(8, 8, 24, 24)).(*image.Paletted)

	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))

	n, err := Decode(b)
	require.Nil(t, err)
	require.Equal(t, image.Rect(0, 0, 16, 16), n.Rect)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			assert.Equal(t, m.ColorIndexAt(x+8, y+8), n.ColorIndexAt(x, y))
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	err := Encode(new(bytes.Buffer), pattern(12, 8))
	assert.True(t, errors.Is(err, ErrSize))

	m := pattern(8, 8)
	m.SetColorIndex(3, 3, 16)
	err = Encode(new(bytes.Buffer), m)
	assert.True(t, errors.Is(err, ErrIndexRange))
}

func TestDecodeTruncated(t *testing.T) {
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, pattern(8, 8)))

	_, err := Decode(bytes.NewReader(b.Bytes()[:b.Len()-1]))
	assert.Equal(t, errNotEnough, err)

	_, err = Decode(bytes.NewReader(b.Bytes()[:2]))
	assert.Equal(t, errNotEnough, err)
}

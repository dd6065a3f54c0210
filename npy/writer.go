package npy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
)

func header(height, width int) []byte {
	h := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }", descr, height, width)

	// Pad with spaces, leaving room for the terminating newline
	pad := alignment - (preambleSz+len(h)+1)%alignment
	if pad == alignment {
		pad = 0
	}

	b := new(bytes.Buffer)
	b.WriteString(magic)
	b.Write([]byte{major, minor})
	binary.Write(b, binary.LittleEndian, uint16(len(h)+pad+1))
	b.WriteString(h)
	b.Write(bytes.Repeat([]byte{' '}, pad))
	b.WriteByte('\n')
	return b.Bytes()
}

// Encode writes the index grid of m to w as a two dimensional array of shape
// (height, width).
func Encode(w io.Writer, m *image.Paletted) error {
	b := m.Bounds()
	if _, err := w.Write(header(b.Dy(), b.Dx())); err != nil {
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if _, err := w.Write(m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]); err != nil {
			return err
		}
	}
	return nil
}

package tile

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"
)

type encoder struct {
	w io.Writer

	tmp [tileBytes]byte
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()
	tileX, tileY := b.Dx()/tileWidth, b.Dy()/tileHeight

	var header [headerBytes]byte
	binary.LittleEndian.PutUint16(header[0:], uint16(tileX))
	binary.LittleEndian.PutUint16(header[2:], uint16(tileY))
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	for ty := 0; ty < tileY; ty++ {
		for tx := 0; tx < tileX; tx++ {
			for y := 0; y < tileHeight; y++ {
				for x := 0; x < tileWidth>>1; x++ {
					dx := b.Min.X + tx*tileWidth + x<<1
					dy := b.Min.Y + ty*tileHeight + y

					e.tmp[y*tileWidth>>1+x] = m.ColorIndexAt(dx, dy)<<4 | m.ColorIndexAt(dx+1, dy)
				}
			}
			if _, err := e.w.Write(e.tmp[:]); err != nil {
				return err
			}
		}
	}

	return nil
}

// Encode writes the index grid of m to w in packed 4bpp tile format. Every
// index must be below 16 and both dimensions a multiple of 8.
func Encode(w io.Writer, m *image.Paletted) error {
	b := m.Bounds()
	if b.Dx()%tileWidth != 0 || b.Dy()%tileHeight != 0 || b.Empty() {
		return errors.Wrapf(ErrSize, "%dx%d", b.Dx(), b.Dy())
	}
	if b.Dx()/tileWidth > maxTiles || b.Dy()/tileHeight > maxTiles {
		return errors.Wrapf(ErrSize, "%dx%d", b.Dx(), b.Dy())
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i := m.ColorIndexAt(x, y); i >= colorsPerPalette {
				return errors.Wrapf(ErrIndexRange, "index %d at (%d, %d)", i, x, y)
			}
		}
	}

	e := encoder{w: w}

	return e.encode(m)
}

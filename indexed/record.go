package indexed

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Record is the serialized form of an indexed image: a grid of palette
// indices, one row per element, and a palette of RGB triples where the
// position of a triple is its index value.
type Record struct {
	Pixels  [][]int `json:"pixels"`
	Palette [][]int `json:"palette"`
}

// Image validates the record and converts it into an indexed image.
func (r *Record) Image() (*image.Paletted, error) {
	if len(r.Pixels) == 0 || len(r.Pixels[0]) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "missing pixels")
	}
	if len(r.Palette) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "missing palette")
	}
	if len(r.Palette) > 256 {
		return nil, errors.Wrapf(ErrInvalidInput, "palette has %d colors", len(r.Palette))
	}

	p := make(color.Palette, len(r.Palette))
	for i, rgb := range r.Palette {
		if len(rgb) != 3 {
			return nil, errors.Wrapf(ErrInvalidInput, "palette entry %d has %d channels", i, len(rgb))
		}
		for _, v := range rgb {
			if v < 0 || v > 0xff {
				return nil, errors.Wrapf(ErrInvalidInput, "palette entry %d channel %d out of range", i, v)
			}
		}
		p[i] = color.RGBA{uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2]), 0xff}
	}

	width := len(r.Pixels[0])
	m := image.NewPaletted(image.Rect(0, 0, width, len(r.Pixels)), p)
	for y, row := range r.Pixels {
		if len(row) != width {
			return nil, errors.Wrapf(ErrInvalidInput, "row %d has %d pixels, expected %d", y, len(row), width)
		}
		for x, v := range row {
			if v < 0 || v > 0xff {
				return nil, errors.Wrapf(ErrInvalidInput, "pixel (%d, %d) index %d out of range", x, y, v)
			}
			m.Pix[y*m.Stride+x] = uint8(v)
		}
	}

	return m, Validate(m)
}

// NewRecord returns the record form of m.
func NewRecord(m *image.Paletted) *Record {
	b := m.Bounds()
	r := &Record{
		Pixels:  make([][]int, 0, b.Dy()),
		Palette: make([][]int, 0, len(m.Palette)),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]int, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			row = append(row, int(m.ColorIndexAt(x, y)))
		}
		r.Pixels = append(r.Pixels, row)
	}
	for _, c := range m.Palette {
		rgb := opaque(c)
		r.Palette = append(r.Palette, []int{int(rgb.R), int(rgb.G), int(rgb.B)})
	}
	return r
}

/*
Package indexed provides the indexed image record exchanged with callers and
the helpers for working with palette indices rather than colors.

An indexed image is an *image.Paletted; every index value in its pixel grid
must have a corresponding palette entry.
*/
package indexed

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrInvalidInput is returned when an image or record fails validation.
var ErrInvalidInput = errors.New("indexed: invalid input")

// Validate checks that every pixel in m refers to an entry in its palette.
func Validate(m *image.Paletted) error {
	if m == nil {
		return errors.Wrap(ErrInvalidInput, "nil image")
	}
	if m.Rect.Empty() {
		return errors.Wrap(ErrInvalidInput, "empty image")
	}
	for _, i := range UsedColors(m) {
		if int(i) >= len(m.Palette) {
			return errors.Wrapf(ErrInvalidInput, "index %d has no palette entry (%d colors)", i, len(m.Palette))
		}
	}
	return nil
}

// UsedColors returns the distinct index values present in m, sorted in
// ascending order.
func UsedColors(m *image.Paletted) []uint8 {
	var seen [256]bool
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for _, i := range m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)] {
			seen[i] = true
		}
	}

	used := make([]uint8, 0, 16)
	for i, ok := range seen {
		if ok {
			used = append(used, uint8(i))
		}
	}
	return used
}

// FromImage returns m as an indexed image. An *image.Paletted is returned
// as-is, anything else is indexed by assigning palette entries in the order
// colors are first seen, scanning rows top to bottom.
func FromImage(m image.Image) (*image.Paletted, error) {
	if pm, ok := m.(*image.Paletted); ok {
		return pm, Validate(pm)
	}

	b := m.Bounds()
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), nil)
	seen := make(map[color.RGBA]uint8)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := opaque(m.At(x, y))
			i, ok := seen[c]
			if !ok {
				if len(pm.Palette) == 256 {
					return nil, errors.Wrap(ErrInvalidInput, "more than 256 colors")
				}
				i = uint8(len(pm.Palette))
				seen[c] = i
				pm.Palette = append(pm.Palette, c)
			}
			pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, i)
		}
	}

	return pm, Validate(pm)
}

// Only the RGB channels take part in indexing
func opaque(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{n.R, n.G, n.B, 0xff}
}

// Colors returns the entries of p at the given indices, in the order given.
// Indices beyond the end of p yield opaque black.
func Colors(p color.Palette, indices []uint8) color.Palette {
	out := make(color.Palette, 0, len(indices))
	for _, i := range indices {
		out = append(out, At(p, i))
	}
	return out
}

// At returns entry i of p, or opaque black if p is too short.
func At(p color.Palette, i uint8) color.Color {
	if int(i) < len(p) {
		return p[i]
	}
	return color.RGBA{0, 0, 0, 0xff}
}

package palnorm

import (
	"image"
	"image/color"

	"github.com/bodgit/palnorm/indexed"
)

// IndexMap maps an index value in a variant to its position in the used
// colors of the base image.
type IndexMap map[uint8]uint8

// NewIndexMap assigns the output indices 0, 1, 2, ... to the base indices in
// the order given. The mapping depends only on the base, so every variant of
// the same base is remapped the same way.
func NewIndexMap(base []uint8) IndexMap {
	im := make(IndexMap, len(base))
	for _, old := range base {
		if _, ok := im[old]; !ok {
			im[old] = uint8(len(im))
		}
	}
	return im
}

// Lookup returns the new value for old, or old itself if it is not mapped.
func (im IndexMap) Lookup(old uint8) (uint8, bool) {
	if n, ok := im[old]; ok {
		return n, true
	}
	return old, false
}

// Remap returns a copy of m with every mapped index replaced. Indices without
// a mapping keep their value. The palette is shared with m.
func (im IndexMap) Remap(m *image.Paletted) *image.Paletted {
	var lut [256]uint8
	for i := range lut {
		lut[i], _ = im.Lookup(uint8(i))
	}

	b := m.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), m.Palette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		row := dst.Pix[(y-b.Min.Y)*dst.Stride:]
		for x, i := range src {
			row[x] = lut[i]
		}
	}
	return dst
}

// Palette returns the palette that matches a grid remapped by im: entry j is
// the color that pixels holding j displayed before remapping. It covers every
// value up to the highest one in use, gaps are opaque black. Where a mapped
// and an unmapped index end up on the same value the mapped color wins.
func (im IndexMap) Palette(p color.Palette, used []uint8) color.Palette {
	var (
		entries [256]color.Color
		mapped  [256]bool
		n       int
	)
	for _, old := range used {
		j, ok := im.Lookup(old)
		if mapped[j] && !ok {
			continue
		}
		entries[j], mapped[j] = indexed.At(p, old), ok
		if int(j)+1 > n {
			n = int(j) + 1
		}
	}

	out := make(color.Palette, n)
	for i := range out {
		if entries[i] == nil {
			out[i] = color.RGBA{0x00, 0x00, 0x00, 0xff}
			continue
		}
		out[i] = entries[i]
	}
	return out
}

// VariantPalette returns the colors of m at its used indices in ascending
// index order. The order does not follow any remapping of the pixels.
func VariantPalette(m *image.Paletted, used []uint8) color.Palette {
	return indexed.Colors(m.Palette, used)
}

package indexed

import (
	"image"
	"image/color"
)

// Reconstruct builds a true color image by replacing every index in m with
// its color from p. Indices without an entry in p become opaque black.
func Reconstruct(m *image.Paletted, p color.Palette) *image.RGBA {
	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	var lut [256]color.RGBA
	for i := range lut {
		lut[i] = opaque(At(p, uint8(i)))
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, lut[m.ColorIndexAt(x, y)])
		}
	}
	return dst
}

// RGB returns the reconstructed pixels of m as row-major RGB triples.
func RGB(m *image.Paletted, p color.Palette) [][3]uint8 {
	rgba := Reconstruct(m, p)
	out := make([][3]uint8, 0, len(rgba.Pix)/4)
	for i := 0; i < len(rgba.Pix); i += 4 {
		out = append(out, [3]uint8{rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2]})
	}
	return out
}

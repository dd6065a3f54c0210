/*
Package geometry normalizes the dimensions of indexed images.

Images are expected to be built from 64 pixel blocks: the height must be a
multiple of 64 and the width either exactly 64 or a multiple of it. Wider
images are reduced to 64 columns by nearest neighbour sampling, index values
are never blended.
*/
package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/bodgit/palnorm/indexed"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Width is the width every normalized image ends up with. It is also the
// block size both dimensions must be a multiple of.
const Width = 64

// ErrInvalidGeometry is returned when an image's dimensions are not built
// from whole 64 pixel blocks.
var ErrInvalidGeometry = errors.New("geometry: invalid dimensions")

// Validate checks the dimensions of m.
func Validate(m image.Image) error {
	b := m.Bounds()
	if b.Dy() <= 0 || b.Dy()%Width != 0 {
		return errors.Wrapf(ErrInvalidGeometry, "height %d is not a multiple of %d", b.Dy(), Width)
	}
	if b.Dx() <= 0 || b.Dx()%Width != 0 {
		return errors.Wrapf(ErrInvalidGeometry, "width %d is not a multiple of %d", b.Dx(), Width)
	}
	return nil
}

// Downsample reduces m to exactly Width columns by taking every step'th
// column starting from the first, where step is the width divided by Width.
// An image that is already Width wide is returned unchanged. The palette is
// carried over as-is.
func Downsample(m *image.Paletted) (*image.Paletted, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}

	b := m.Bounds()
	if b.Dx() == Width {
		return m, nil
	}

	step := b.Dx() / Width
	dst := image.NewPaletted(image.Rect(0, 0, Width, b.Dy()), m.Palette)
	for y := 0; y < b.Dy(); y++ {
		src := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+Width]
		for x := range row {
			row[x] = src[x*step]
		}
	}
	return dst, nil
}

// SparsePalette returns a 256 entry palette that holds the color from src at
// every index value present in m, in its original position. Every other
// entry is opaque black.
func SparsePalette(m *image.Paletted, src color.Palette) color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.RGBA{0x00, 0x00, 0x00, 0xff}
	}
	for _, i := range indexed.UsedColors(m) {
		p[i] = indexed.At(src, i)
	}
	return p
}

// Normalize downsamples m and restricts its palette to the colors still in
// use.
func Normalize(m *image.Paletted) (*image.Paletted, error) {
	dst, err := Downsample(m)
	if err != nil {
		return nil, err
	}
	out := *dst
	out.Palette = SparsePalette(dst, m.Palette)
	return &out, nil
}

// Fit lays the base image out with the geometry of variant and returns it
// colored with the palette of variant. Both images are downsampled, the base
// is cropped from the top to the aspect ratio of the variant and then resized
// with nearest neighbour sampling. The palette is sparse, holding the colors
// of variant at the index values that survive from the base.
func Fit(base, variant *image.Paletted) (*image.Paletted, error) {
	db, err := Downsample(base)
	if err != nil {
		return nil, errors.Wrap(err, "base")
	}
	dv, err := Downsample(variant)
	if err != nil {
		return nil, err
	}

	target := dv.Bounds().Size()
	bb := db.Bounds()

	h := int(math.Round(float64(bb.Dx()) * float64(target.Y) / float64(target.X)))
	if h > bb.Dy() {
		h = bb.Dy()
	}
	crop := image.Rect(bb.Min.X, bb.Min.Y, bb.Max.X, bb.Min.Y+h)

	dst := resize(db, crop, target)
	dst.Palette = SparsePalette(dst, variant.Palette)
	return dst, nil
}

// Indices travel through a gray image so the scaler copies them verbatim
func resize(m *image.Paletted, r image.Rectangle, size image.Point) *image.Paletted {
	src := image.NewGray(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(src.Pix[src.PixOffset(r.Min.X, y):src.PixOffset(r.Max.X, y)], m.Pix[m.PixOffset(r.Min.X, y):m.PixOffset(r.Max.X, y)])
	}

	dst := image.NewGray(image.Rect(0, 0, size.X, size.Y))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := image.NewPaletted(dst.Rect, nil)
	copy(out.Pix, dst.Pix)
	return out
}

package palnorm

import (
	"encoding/json"
	"image"
	"image/color"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/bodgit/palnorm/indexed"
	"github.com/bodgit/palnorm/jasc"
	"github.com/bodgit/palnorm/npy"
	"github.com/bodgit/palnorm/tile"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const (
	baseSuffix   = ".pal"
	noBaseSuffix = "_no_base.pal"
	outputSuffix = "_output"
	rawSuffix    = "_raw"
	zstdSuffix   = ".zst"

	// PreviewFilename is the name of the aggregate preview written for each
	// collection.
	PreviewFilename = "preview.json"
)

func paletteName(name string, hasBase bool) string {
	if hasBase {
		return name + baseSuffix
	}
	return name + noBaseSuffix
}

func (n *Normalizer) gridName(name string, hasBase bool) string {
	s := name + rawSuffix
	if hasBase {
		s = name + outputSuffix
	}
	s += n.opts.Format.ext()
	if n.compressed() {
		s += zstdSuffix
	}
	return s
}

func (n *Normalizer) compressed() bool {
	return n.opts.Compress && (n.opts.Format == FormatNPY || n.opts.Format == Format4bpp)
}

// Preview is the true color rendering of a grid, as consumed by a browser
// canvas.
type Preview struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Pixels [][3]uint8 `json:"pixels"`
}

func newPreview(m *image.Paletted, p color.Palette) Preview {
	return Preview{
		Width:  m.Bounds().Dx(),
		Height: m.Bounds().Dy(),
		Pixels: indexed.RGB(m, p),
	}
}

func writeArtifact(sink Sink, name string, fn func(io.Writer) error) (err error) {
	w, err := sink.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create %s", name)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", name)
		}
		if err != nil {
			_ = sink.Remove(name)
		}
	}()

	if err := fn(w); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}

func writePalette(sink Sink, name string, p color.Palette) error {
	return writeArtifact(sink, name, func(w io.Writer) error {
		return jasc.Encode(w, p)
	})
}

func writePreview(sink Sink, previews map[string]Preview) error {
	return writeArtifact(sink, PreviewFilename, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(previews)
	})
}

// The grid holds (possibly remapped) indices, p is what they display
func (n *Normalizer) writeGrid(sink Sink, name string, m *image.Paletted, p color.Palette) error {
	return writeArtifact(sink, name, func(w io.Writer) (err error) {
		if n.compressed() {
			enc, zerr := zstd.NewWriter(w)
			if zerr != nil {
				return zerr
			}
			defer func() {
				if cerr := enc.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			w = enc
		}

		switch n.opts.Format {
		case FormatNPY:
			return npy.Encode(w, m)
		case Format4bpp:
			return tile.Encode(w, m)
		case FormatJSON:
			return json.NewEncoder(w).Encode(newPreview(m, p))
		default:
			return imgio.PNGEncoder()(w, indexed.Reconstruct(m, p))
		}
	})
}

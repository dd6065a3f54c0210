/*
Package palnorm is a library for converting collections of indexed color
images into 16 color JASC-PAL palettes and re-indexed pixel data.

A collection may contain an image named "Base". Its used colors define the
canonical index order every other image in the collection, a variant, is
remapped onto. Optionally every image is first brought to the geometry of
the base: 64 pixels wide with the base cropped and resized to the height of
each variant.
*/
package palnorm

import (
	"fmt"
	"log"
	"strings"
)

// Format selects how the pixel grid of each variant is written.
type Format string

const (
	// FormatPNG writes the true color reconstruction of the grid.
	FormatPNG Format = "png"
	// FormatNPY writes the index grid as a NumPy array.
	FormatNPY Format = "npy"
	// FormatJSON writes the true color reconstruction as JSON.
	FormatJSON Format = "json"
	// Format4bpp writes the index grid as packed 4bpp tiles.
	Format4bpp Format = "4bpp"
)

var formats = []Format{FormatPNG, FormatNPY, FormatJSON, Format4bpp}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

func (f Format) ext() string {
	return "." + string(f)
}

// MaxColors is the number of colors a JASC-PAL palette produced for a
// variant may hold.
const MaxColors = 16

// Options control how collections are processed.
type Options struct {
	// Resample normalizes the geometry of every image before remapping.
	Resample bool
	// ReorderPalette emits variant palettes in the order of the remapped
	// pixel values rather than the original index order.
	ReorderPalette bool
	// Format of the pixel grid artifact.
	Format Format
	// Compress wraps binary grid artifacts in zstd.
	Compress bool
	// Preview writes preview.json for each collection.
	Preview bool
	// MaxColors is the most colors a variant may use. It is capped at
	// MaxColors.
	MaxColors int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Format:    FormatPNG,
		MaxColors: MaxColors,
	}
}

// Normalizer processes collections of indexed images.
type Normalizer struct {
	opts   Options
	logger *log.Logger
}

// New returns a Normalizer using opts that reports warnings and per-image
// failures to logger.
func New(opts Options, logger *log.Logger) *Normalizer {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.MaxColors <= 0 || opts.MaxColors > MaxColors {
		opts.MaxColors = MaxColors
	}
	return &Normalizer{
		opts:   opts,
		logger: logger,
	}
}

package jasc

import (
	"bufio"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrFormat is returned when the input is not a valid JASC-PAL file.
var ErrFormat = errors.New("jasc: invalid format")

type decoder struct {
	s    *bufio.Scanner
	line int
}

func (d *decoder) next() (string, bool) {
	for d.s.Scan() {
		d.line++
		if l := strings.TrimSpace(d.s.Text()); l != "" {
			return l, true
		}
	}
	return "", false
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}

func (d *decoder) header() (int, error) {
	for _, want := range []string{signature, version} {
		l, ok := d.next()
		if !ok {
			return 0, errors.Wrap(ErrFormat, "truncated header")
		}
		if l != want {
			return 0, errors.Wrapf(ErrFormat, "line %d: expected %q, got %q", d.line, want, l)
		}
	}

	l, ok := d.next()
	if !ok {
		return 0, errors.Wrap(ErrFormat, "missing color count")
	}
	n, err := strconv.Atoi(l)
	if err != nil || n < 0 || n > maxColors {
		return 0, errors.Wrapf(ErrFormat, "line %d: bad color count %q", d.line, l)
	}
	return n, nil
}

func (d *decoder) decode(r io.Reader) (color.Palette, error) {
	d.s = bufio.NewScanner(r)

	n, err := d.header()
	if err != nil {
		return nil, err
	}

	p := make(color.Palette, 0, n)
	for i := 0; i < n; i++ {
		l, ok := d.next()
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "expected %d colors, got %d", n, i)
		}
		fields := strings.Fields(l)
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrFormat, "line %d: expected 3 channels, got %d", d.line, len(fields))
		}
		var rgb [3]uint8
		for j, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(ErrFormat, "line %d: bad channel %q", d.line, f)
			}
			rgb[j] = clamp(v)
		}
		p = append(p, color.RGBA{rgb[0], rgb[1], rgb[2], 0xff})
	}

	if err := d.s.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

// Decode reads a JASC-PAL palette from r. Channel values outside 0-255 are
// clamped and every color is returned fully opaque.
func Decode(r io.Reader) (color.Palette, error) {
	var d decoder
	return d.decode(r)
}

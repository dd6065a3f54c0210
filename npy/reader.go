package npy

import (
	"encoding/binary"
	"image"
	"io"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// ErrFormat is returned when the input is not an array this package can
// decode.
var ErrFormat = errors.New("npy: unsupported format")

var (
	descrRegexp = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	orderRegexp = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRegexp = regexp.MustCompile(`'shape':\s*\(\s*(\d+)\s*,\s*(\d+)\s*,?\s*\)`)
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Decode reads a two dimensional array of unsigned bytes from r and returns
// it as an index grid with no palette.
func Decode(r io.Reader) (*image.Paletted, error) {
	var preamble [preambleSz]byte
	if err := readFull(r, preamble[:]); err != nil {
		return nil, err
	}
	if string(preamble[:len(magic)]) != magic {
		return nil, errors.Wrap(ErrFormat, "bad magic")
	}
	if preamble[len(magic)] != major {
		return nil, errors.Wrapf(ErrFormat, "version %d.%d", preamble[len(magic)], preamble[len(magic)+1])
	}

	h := make([]byte, binary.LittleEndian.Uint16(preamble[len(magic)+2:]))
	if err := readFull(r, h); err != nil {
		return nil, err
	}

	if m := descrRegexp.FindSubmatch(h); m == nil || (string(m[1]) != descr && string(m[1]) != "<u1") {
		return nil, errors.Wrap(ErrFormat, "element type is not uint8")
	}
	if m := orderRegexp.FindSubmatch(h); m == nil || string(m[1]) != "False" {
		return nil, errors.Wrap(ErrFormat, "array is not C ordered")
	}
	m := shapeRegexp.FindSubmatch(h)
	if m == nil {
		return nil, errors.Wrap(ErrFormat, "array is not two dimensional")
	}
	height, _ := strconv.Atoi(string(m[1]))
	width, _ := strconv.Atoi(string(m[2]))

	pm := image.NewPaletted(image.Rect(0, 0, width, height), nil)
	if err := readFull(r, pm.Pix); err != nil {
		return nil, err
	}
	return pm, nil
}

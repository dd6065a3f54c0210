package jasc

import (
	"image/color"
	"io"
	"strconv"
	"strings"
)

// Colors with alpha are written unpremultiplied, transparency is dropped
func channels(c color.Color) (uint8, uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

// Marshal returns the JASC-PAL text for p. Lines are separated by a single
// newline and there is no trailing newline.
func Marshal(p color.Palette) []byte {
	lines := make([]string, 0, len(p)+3)
	lines = append(lines, signature, version, strconv.Itoa(len(p)))
	for _, c := range p {
		r, g, b := channels(c)
		lines = append(lines, strconv.Itoa(int(r))+" "+strconv.Itoa(int(g))+" "+strconv.Itoa(int(b)))
	}
	return []byte(strings.Join(lines, "\n"))
}

// Encode writes the palette p to w in JASC-PAL format.
func Encode(w io.Writer, p color.Palette) error {
	_, err := w.Write(Marshal(p))
	return err
}

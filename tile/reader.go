package tile

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"
)

var errNotEnough = errors.New("tile: not enough image data")

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func upperNibble(b byte) byte {
	return b >> 4
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

type decoder struct {
	r io.Reader

	tileX, tileY int

	image *image.Paletted

	tmp [tileBytes]byte
}

func (d *decoder) readHeader() error {
	var header [headerBytes]byte
	if err := readFull(d.r, header[:]); err != nil {
		return err
	}
	d.tileX = int(binary.LittleEndian.Uint16(header[0:]))
	d.tileY = int(binary.LittleEndian.Uint16(header[2:]))
	if d.tileX == 0 || d.tileY == 0 {
		return ErrSize
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if configOnly {
		return nil
	}

	d.image = image.NewPaletted(image.Rect(0, 0, d.tileX*tileWidth, d.tileY*tileHeight), nil)

	for ty := 0; ty < d.tileY; ty++ {
		for tx := 0; tx < d.tileX; tx++ {
			if err := readFull(d.r, d.tmp[:]); err != nil {
				if err != io.ErrUnexpectedEOF {
					return err
				}
				return errNotEnough
			}
			for y := 0; y < tileHeight; y++ {
				for x := 0; x < tileWidth>>1; x++ {
					i := y*tileWidth>>1 + x

					dx := tx*tileWidth + x<<1
					dy := ty*tileHeight + y

					d.image.SetColorIndex(dx+0, dy, upperNibble(d.tmp[i]))
					d.image.SetColorIndex(dx+1, dy, lowerNibble(d.tmp[i]))
				}
			}
		}
	}

	return nil
}

// Decode reads a packed tile grid from r and returns it as an index grid
// with no palette.
func Decode(r io.Reader) (*image.Paletted, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the dimensions of a packed tile grid without decoding
// the tiles.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		Width:  d.tileX * tileWidth,
		Height: d.tileY * tileHeight,
	}, nil
}

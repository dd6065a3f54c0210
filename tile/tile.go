/*
Package tile implements a packed 4bpp tile decoder and encoder for 16 color
index grids.

The grid is split into 8 by 8 tiles, stored left to right then top to bottom.
A four byte header holds the number of tile columns and tile rows as
little-endian 16-bit values. Each tile follows as 32 bytes with two pixels
per byte, the left pixel in the upper nibble. Only the indices are stored,
the palette travels separately.
*/
package tile

import "github.com/pkg/errors"

const (
	tileWidth        = 8
	tileHeight       = tileWidth
	tilePixels       = tileWidth * tileHeight
	tileBytes        = tilePixels >> 1
	colorsPerPalette = 16
	headerBytes      = 4
	maxTiles         = 1<<16 - 1
)

var (
	// ErrIndexRange is returned when encoding an index that does not fit
	// in four bits.
	ErrIndexRange = errors.New("tile: index out of range")
	// ErrSize is returned when the image is not made of whole tiles.
	ErrSize = errors.New("tile: image is wrong size")
)

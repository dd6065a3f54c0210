/*
Package npy implements a decoder and encoder for the NumPy .npy array format,
limited to what is needed to store a grid of palette indices: version 1.0
files holding a two dimensional, C ordered array of unsigned bytes.

The file starts with the magic string "\x93NUMPY", two version bytes and a
little-endian 16-bit header length. The header is a Python dictionary literal
padded with spaces and terminated by a newline so that the array data starts
on a 64 byte boundary.
*/
package npy

const (
	magic      = "\x93NUMPY"
	major      = 1
	minor      = 0
	descr      = "|u1"
	alignment  = 64
	preambleSz = len(magic) + 2 + 2
)

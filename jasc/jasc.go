/*
Package jasc implements a JASC-PAL palette decoder and encoder.

The format is plain text. A three line header holds the signature
"JASC-PAL", the version "0100" and the number of colors, followed by one line
per color with the red, green and blue channels as space separated decimal
values between 0 and 255.
*/
package jasc

const (
	signature = "JASC-PAL"
	version   = "0100"
	maxColors = 256
)

// Package encoder writes normalized photos in the configured output format.
package encoder

import (
	"image"
	"io"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the format name ("jpeg", "png").
	Format() string

	// Encode writes img to w. quality (1-100) is ignored by lossless formats.
	Encode(w io.Writer, img image.Image, quality int) error

	// Lossy reports whether quality affects the output.
	Lossy() bool
}

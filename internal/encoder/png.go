package encoder

import (
	"image"
	"image/png"
	"io"
)

// PNGEncoder is the lossless alternative for sites that need exact pixels.
type PNGEncoder struct{}

func (PNGEncoder) Format() string { return "png" }
func (PNGEncoder) Lossy() bool    { return false }

func (PNGEncoder) Encode(w io.Writer, img image.Image, _ int) error {
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

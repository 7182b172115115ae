package encoder

import (
	"image"
	"image/jpeg"
	"io"
)

// DefaultJPEGQuality is used when the caller passes an out-of-range quality.
const DefaultJPEGQuality = 65

// JPEGEncoder encodes baseline JPEG with the standard library encoder.
type JPEGEncoder struct{}

func (JPEGEncoder) Format() string { return "jpeg" }
func (JPEGEncoder) Lossy() bool    { return true }

func (JPEGEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// Package imagenorm downsizes and recompresses photos before publishing.
package imagenorm

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/AnyUserName/fotosync/internal/encoder"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadableImage is returned when the source cannot be decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// Result describes a written normalized image.
type Result struct {
	Width  int
	Height int
	Bytes  int64
	// SizeKB is Bytes in kilobytes rounded to two decimals.
	SizeKB float64
}

// Normalizer caps the longer side of an image and re-encodes it.
type Normalizer struct {
	maxDimension int
	quality      int
	enc          encoder.Encoder
}

// New returns a Normalizer. enc defaults to JPEG.
func New(maxDimension, quality int, enc encoder.Encoder) *Normalizer {
	if enc == nil {
		enc = encoder.JPEGEncoder{}
	}
	return &Normalizer{maxDimension: maxDimension, quality: quality, enc: enc}
}

// FitWithin returns the dimensions of a w×h image scaled so its longer side
// is at most max. Images already within bounds are returned unchanged.
func FitWithin(w, h, max int) (int, int) {
	if w <= 0 || h <= 0 || max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

// Normalize decodes src, downsizes it if needed and writes the re-encoded
// image to dst, replacing any existing file and creating missing parents.
func (n *Normalizer) Normalize(src, dst string) (Result, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, src, err)
	}

	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), n.maxDimension)
	var out image.Image = img
	if w != b.Dx() || h != b.Dy() {
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	if err := n.enc.Encode(&buf, out, n.quality); err != nil {
		return Result{}, fmt.Errorf("encode %s as %s: %w", src, n.enc.Format(), err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, fmt.Errorf("create staging dir: %w", err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", dst, err)
	}

	size := int64(buf.Len())
	return Result{
		Width:  w,
		Height: h,
		Bytes:  size,
		SizeKB: KB(size),
	}, nil
}

// KB converts a byte count to kilobytes rounded to two decimals.
func KB(n int64) float64 {
	return math.Round(float64(n)/1024*100) / 100
}

package imagenorm

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/fotosync/internal/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, gradient(w, h), &jpeg.Options{Quality: 90}))
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{4000, 3000, 1024, 1024, 768},
		{3000, 4000, 1024, 768, 1024},
		{1024, 1024, 1024, 1024, 1024},
		{800, 600, 1024, 800, 600},
		{5000, 2, 1024, 1024, 1},
		{1025, 1000, 1024, 1024, 999},
	}
	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
	}
}

func TestFitWithinPreservesAspect(t *testing.T) {
	for _, d := range [][2]int{{1920, 1080}, {4032, 3024}, {1500, 4000}, {2049, 1031}} {
		w, h := FitWithin(d[0], d[1], 1024)
		longer := w
		if h > w {
			longer = h
		}
		assert.Equal(t, 1024, longer)

		want := float64(d[0]) / float64(d[1])
		got := float64(w) / float64(h)
		// One pixel of truncation on the shorter side.
		short := float64(min(w, h))
		assert.InEpsilon(t, want, got, 1/short+1e-9)
	}
}

func TestNormalizeDownscales(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.jpg")
	writeJPEG(t, src, 2048, 1536)

	dst := filepath.Join(dir, "staging", "P1", "Week_1", "big.jpg")
	n := New(1024, 65, nil)
	res, err := n.Normalize(src, dst)
	require.NoError(t, err)

	assert.Equal(t, 1024, res.Width)
	assert.Equal(t, 768, res.Height)
	w, h := decodeSize(t, dst)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.Bytes)
	assert.Equal(t, KB(info.Size()), res.SizeKB)
}

func TestNormalizeNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.jpg")
	writeJPEG(t, src, 300, 200)

	dst := filepath.Join(dir, "out.jpg")
	res, err := New(1024, 65, nil).Normalize(src, dst)
	require.NoError(t, err)

	assert.Equal(t, 300, res.Width)
	assert.Equal(t, 200, res.Height)
	w, h := decodeSize(t, dst)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestNormalizeOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	writeJPEG(t, src, 64, 64)
	dst := filepath.Join(dir, "dst.jpg")
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

	_, err := New(1024, 65, nil).Normalize(src, dst)
	require.NoError(t, err)
	w, _ := decodeSize(t, dst)
	assert.Equal(t, 64, w)
}

func TestNormalizeUnreadable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	dst := filepath.Join(dir, "out", "broken.jpg")
	_, err := New(1024, 65, nil).Normalize(src, dst)
	assert.ErrorIs(t, err, ErrUnreadableImage)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNormalizePNGEncoder(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	writeJPEG(t, src, 40, 20)
	dst := filepath.Join(dir, "out.png")

	_, err := New(16, 0, encoder.PNGEncoder{}).Normalize(src, dst)
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestKB(t *testing.T) {
	assert.Equal(t, 1.0, KB(1024))
	assert.Equal(t, 0.5, KB(512))
	assert.Equal(t, 1.33, KB(1362))
}

package imageproc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func testImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func testImageBytes(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()

	var buf bytes.Buffer
	err := imaging.Encode(&buf, testImage(w, h, color.NRGBA{R: 100, G: 100, B: 200, A: 255}), format)
	require.NoError(t, err)

	return buf.Bytes()
}

func testRaster(t *testing.T, w, h int, c color.NRGBA) *Raster {
	t.Helper()

	r, err := NewRaster(testImage(w, h, c), "png")
	require.NoError(t, err)

	return r
}

func mustDecode(t *testing.T, r io.Reader) image.Image {
	t.Helper()

	img, err := imaging.Decode(r)
	require.NoError(t, err)
	require.NotNil(t, img)

	return img
}

func rgbaAt(b *OutputBuffer, x, y int) color.RGBA {
	return b.img.RGBAAt(x, y)
}

// fakeMeasurer - фиксированная ширина текста, не зависящая от шрифта
type fakeMeasurer struct {
	width float64
	err   error
}

func (f fakeMeasurer) MeasureString(string, float64, bool) (float64, error) {
	return f.width, f.err
}

type fakeFetcher struct {
	GetFunc func(ctx context.Context, key string) (io.ReadCloser, string, error)
}

func (f *fakeFetcher) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return f.GetFunc(ctx, key)
}

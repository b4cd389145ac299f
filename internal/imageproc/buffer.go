package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// OutputBuffer is the pixel store produced by one render or merge invocation.
type OutputBuffer struct {
	img *image.RGBA
}

func newOutputBuffer(img *image.RGBA) *OutputBuffer {
	return &OutputBuffer{img: img}
}

func (b *OutputBuffer) Width() int { return b.img.Bounds().Dx() }

func (b *OutputBuffer) Height() int { return b.img.Bounds().Dy() }

// Image exposes the pixels read-only; callers must not draw into it.
func (b *OutputBuffer) Image() image.Image { return b.img }

// Export serializes the buffer into the given format (PNG by default in the transport layer).
func Export(b *OutputBuffer, format imaging.Format) (io.Reader, int64, error) {
	if b == nil || b.img == nil {
		return nil, 0, errors.New("nil output buffer provided to Export")
	}

	var buf bytes.Buffer
	if err := b.EncodeTo(&buf, format); err != nil {
		return nil, 0, err
	}
	return &buf, int64(buf.Len()), nil
}

func (b *OutputBuffer) EncodeTo(w io.Writer, format imaging.Format) error {
	switch format {
	case imaging.PNG:
		if err := imaging.Encode(w, b.img, imaging.PNG); err != nil {
			return fmt.Errorf("encode result image: %w", err)
		}
	case imaging.JPEG:
		// у JPEG нет альфы - прозрачные пустоты склейки станут черными
		if err := imaging.Encode(w, b.img, imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
			return fmt.Errorf("encode result image: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %v", format)
	}
	return nil
}

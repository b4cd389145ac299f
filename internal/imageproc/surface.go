package imageproc

import (
	"fmt"
	"image"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
)

// DefaultMaxPixels - 64 Мп, с запасом под склейку нескольких фото с современных камер
const DefaultMaxPixels = 64 << 20

// Surfaces hands out fresh, fully transparent pixel stores within a pixel budget.
type Surfaces struct {
	maxPixels int
}

func NewSurfaces(maxPixels int) *Surfaces {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Surfaces{maxPixels: maxPixels}
}

// Acquire returns a cleared RGBA store of exactly w x h pixels or an error wrapping model.ErrSurfaceUnavailable.
func (s *Surfaces) Acquire(w, h int) (*image.RGBA, error) {
	if err := s.Fits(w, h); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// Fits reports whether a w x h store stays within the budget, without allocating it.
func (s *Surfaces) Fits(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", model.ErrSurfaceUnavailable, w, h)
	}
	// делим, а не умножаем - чтобы не словить переполнение на огромных размерах
	if w > s.maxPixels/h {
		return fmt.Errorf("%w: %dx%d exceeds limit of %d pixels", model.ErrSurfaceUnavailable, w, h, s.maxPixels)
	}
	return nil
}

func (s *Surfaces) MaxPixels() int { return s.maxPixels }

package imageproc

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// TextMeasurer reports the rendered width of text at a given pixel size.
type TextMeasurer interface {
	MeasureString(text string, size float64, bold bool) (float64, error)
}

// FontSet holds parsed regular and bold typefaces. Faces are created per call:
// truetype faces keep glyph caches and must not be shared between goroutines.
type FontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// DefaultFontSet uses the Go fonts embedded in x/image.
func DefaultFontSet() (*FontSet, error) {
	return NewFontSet(goregular.TTF, gobold.TTF)
}

func NewFontSet(regularTTF, boldTTF []byte) (*FontSet, error) {
	regular, err := truetype.Parse(regularTTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(boldTTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &FontSet{regular: regular, bold: bold}, nil
}

// LoadFontSet reads TTF overrides from disk; an empty path keeps the embedded Go font for that weight.
func LoadFontSet(regularPath, boldPath string) (*FontSet, error) {
	regularTTF, boldTTF := goregular.TTF, gobold.TTF

	if regularPath != "" {
		data, err := os.ReadFile(regularPath)
		if err != nil {
			return nil, fmt.Errorf("read regular font %q: %w", regularPath, err)
		}
		regularTTF = data
	}
	if boldPath != "" {
		data, err := os.ReadFile(boldPath)
		if err != nil {
			return nil, fmt.Errorf("read bold font %q: %w", boldPath, err)
		}
		boldTTF = data
	}

	return NewFontSet(regularTTF, boldTTF)
}

// Face returns a fresh face of the requested pixel size.
func (f *FontSet) Face(size float64, bold bool) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %.2f", size)
	}
	ttf := f.regular
	if bold {
		ttf = f.bold
	}
	// DPI 72 - тогда Size совпадает с размером в пикселях
	return truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72}), nil
}

func (f *FontSet) MeasureString(text string, size float64, bold bool) (float64, error) {
	face, err := f.Face(size, bold)
	if err != nil {
		return 0, err
	}
	defer face.Close()

	adv := font.MeasureString(face, text)
	return float64(adv) / 64, nil
}

// Package imageproc provides the compositing engine: watermark placement strategies, rendering of
// draw instructions over a raster and merging of several rasters into one canvas.
package imageproc

import (
	"fmt"
	"image/color"
	"math"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
)

// TextStyle - как рисовать текст одной инструкции. AnchorX/AnchorY - якорь в долях размера текста,
// как в gg.DrawStringAnchored: 0.5/0.5 - центр, 1/0 - правый край на базовой линии.
// BottomAligned поднимает базовую линию на глубину выносных элементов: Y становится нижней границей глифов
type TextStyle struct {
	Size          float64     `json:"font_size"`
	Bold          bool        `json:"bold"`
	Color         color.NRGBA `json:"color"`
	AnchorX       float64     `json:"anchor_x"`
	AnchorY       float64     `json:"anchor_y"`
	BottomAligned bool        `json:"bottom_aligned"`
}

type Shadow struct {
	OffsetX float64     `json:"offset_x"`
	OffsetY float64     `json:"offset_y"`
	Blur    float64     `json:"blur"`
	Color   color.NRGBA `json:"color"`
}

// DrawInstruction places one instance of the text at (X, Y), rotated by Angle radians about that point.
type DrawInstruction struct {
	Text   string    `json:"text"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Angle  float64   `json:"angle"`
	Style  TextStyle `json:"style"`
	Shadow *Shadow   `json:"shadow,omitempty"`
}

// WatermarkStrategy computes where and how the watermark text is drawn on a canvas of the given size.
type WatermarkStrategy interface {
	Instructions(width, height int, text string) ([]DrawInstruction, error)
}

// NewStrategy returns the placement policy for the given mode.
func NewStrategy(mode model.Mode, m TextMeasurer) (WatermarkStrategy, error) {
	switch mode {
	case model.ModeTiledDiagonal:
		return TiledDiagonal{measurer: m}, nil
	case model.ModeSingleCorner:
		return SingleCorner{}, nil
	default:
		return nil, model.ErrIncorrectMode
	}
}

// ComputeInstructions is a shortcut for NewStrategy(...).Instructions(...).
func ComputeInstructions(width, height int, spec model.WatermarkSpec, m TextMeasurer) ([]DrawInstruction, error) {
	s, err := NewStrategy(spec.Mode, m)
	if err != nil {
		return nil, err
	}
	return s.Instructions(width, height, spec.Text)
}

//---------------------

const (
	tiledMinFont   = 24.0
	tiledFontRatio = 25.0
	tiledGapXRatio = 1.5
	tiledGapYRatio = 4.0
	tiledAngle     = -math.Pi / 4

	cornerMinFont    = 20.0
	cornerFontRatio  = 30.0
	cornerMinPadding = 10.0
	cornerPadRatio   = 100.0
)

var (
	tiledColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 64}  // белый, 0.25
	cornerColor = color.NRGBA{R: 255, G: 255, B: 255, A: 153} // белый, 0.6
	cornerShade = Shadow{OffsetX: 2, OffsetY: 2, Blur: 5, Color: color.NRGBA{A: 102}}
)

// TiledDiagonal covers the whole canvas with a grid of translucent text rotated by -45 degrees.
type TiledDiagonal struct {
	measurer TextMeasurer
}

func (t TiledDiagonal) Instructions(width, height int, text string) ([]DrawInstruction, error) {
	if width <= 0 || height <= 0 {
		return nil, model.ErrIncorrectAxis
	}
	if text == "" {
		return nil, model.ErrEmptyWMark
	}
	if t.measurer == nil {
		return nil, fmt.Errorf("tiled watermark requires a text measurer")
	}

	fontSize := math.Max(tiledMinFont, float64(width)/tiledFontRatio)

	textW, err := t.measurer.MeasureString(text, fontSize, true)
	if err != nil {
		return nil, fmt.Errorf("measure watermark text: %w", err)
	}
	// текст без видимых глифов даст нулевой шаг и бесконечную сетку
	if textW <= 0 {
		return nil, model.ErrEmptyWMark
	}

	gapX := textW * tiledGapXRatio
	gapY := fontSize * tiledGapYRatio

	// сетка с нахлестом на один шаг по обеим осям - чтобы у правого/нижнего края не оставалось пустой полосы
	cols := gridCount(float64(width), gapX)
	rows := gridCount(float64(height), gapY)

	style := TextStyle{Size: fontSize, Bold: true, Color: tiledColor, AnchorX: 0.5, AnchorY: 0.5}
	res := make([]DrawInstruction, 0, cols*rows)
	for row := 0; row < rows; row++ {
		y := float64(row) * gapY
		for col := 0; col < cols; col++ {
			res = append(res, DrawInstruction{
				Text:  text,
				X:     float64(col) * gapX,
				Y:     y,
				Angle: tiledAngle,
				Style: style,
			})
		}
	}

	return res, nil
}

// gridCount - сколько шагов step помещается в [0, size+step)
func gridCount(size, step float64) int {
	return int(math.Ceil((size + step) / step))
}

// SingleCorner draws one shadowed instance of the text in the bottom-right corner.
type SingleCorner struct{}

func (SingleCorner) Instructions(width, height int, text string) ([]DrawInstruction, error) {
	if width <= 0 || height <= 0 {
		return nil, model.ErrIncorrectAxis
	}
	if text == "" {
		return nil, model.ErrEmptyWMark
	}

	fontSize := math.Max(cornerMinFont, float64(width)/cornerFontRatio)
	padding := math.Max(cornerMinPadding, float64(width)/cornerPadRatio)
	shadow := cornerShade

	return []DrawInstruction{{
		Text:   text,
		X:      float64(width) - padding,
		Y:      float64(height) - padding,
		Style:  TextStyle{Size: fontSize, Color: cornerColor, AnchorX: 1, BottomAligned: true},
		Shadow: &shadow,
	}}, nil
}

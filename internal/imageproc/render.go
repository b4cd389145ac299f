package imageproc

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/UnendingLoop/WatermarkStudio/internal/mwlogger"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Renderer draws a raster and a list of watermark instructions into a fresh OutputBuffer.
type Renderer struct {
	fonts    *FontSet
	surfaces *Surfaces
}

func NewRenderer(fonts *FontSet, surfaces *Surfaces) *Renderer {
	return &Renderer{fonts: fonts, surfaces: surfaces}
}

// Render copies the raster unscaled at the origin and executes every instruction in order.
// The output always has the raster's intrinsic size.
func (r *Renderer) Render(ctx context.Context, raster *Raster, instructions []DrawInstruction) (*OutputBuffer, error) {
	if raster == nil {
		return nil, fmt.Errorf("nil raster provided to Render")
	}

	surface, err := r.surfaces.Acquire(raster.Width(), raster.Height())
	if err != nil {
		return nil, err
	}

	src := raster.Image()
	draw.Draw(surface, surface.Bounds(), src, src.Bounds().Min, draw.Src)

	dc := gg.NewContextForRGBA(surface)
	for i, in := range instructions {
		if err := r.drawIsolated(dc, surface, in); err != nil {
			return nil, fmt.Errorf("draw instruction #%d: %w", i, err)
		}
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Debug().
		Int("width", raster.Width()).
		Int("height", raster.Height()).
		Int("instructions", len(instructions)).
		Msg("Watermark rendered")

	return newOutputBuffer(surface), nil
}

// drawIsolated выполняет одну инструкцию внутри Push/Pop: поворот и сдвиг не копятся между тайлами,
// Pop отрабатывает на любом выходе из функции
func (r *Renderer) drawIsolated(dc *gg.Context, surface *image.RGBA, in DrawInstruction) error {
	face, err := r.fonts.Face(in.Style.Size, in.Style.Bold)
	if err != nil {
		return err
	}
	defer face.Close()

	if in.Shadow != nil {
		r.drawShadow(surface, face, in)
	}

	dc.Push()
	defer dc.Pop()

	dc.Translate(in.X, in.Y)
	dc.Rotate(in.Angle)
	dc.SetFontFace(face)
	dc.SetColor(in.Style.Color)
	dc.DrawStringAnchored(in.Text, 0, -baselineLift(face, in), in.Style.AnchorX, in.Style.AnchorY)

	return nil
}

// baselineLift - на сколько пикселей поднять базовую линию, чтобы нижний край глифов пришелся на Y.
// Берем большее из descent шрифта и реального нижнего края текста, округляем вверх до целого пикселя
func baselineLift(face font.Face, in DrawInstruction) float64 {
	if !in.Style.BottomAligned {
		return 0
	}
	descent := face.Metrics().Descent
	if bounds, _ := font.BoundString(face, in.Text); bounds.Max.Y > descent {
		descent = bounds.Max.Y
	}
	return math.Ceil(float64(descent) / 64)
}

// drawShadow рисует текст цветом тени на отдельном слое, размывает его и подкладывает под основной текст.
// Смещение тени задается в координатах холста и не зависит от поворота текста
func (r *Renderer) drawShadow(surface *image.RGBA, face font.Face, in DrawInstruction) {
	b := surface.Bounds()
	layer := gg.NewContext(b.Dx(), b.Dy())
	layer.Translate(in.X+in.Shadow.OffsetX, in.Y+in.Shadow.OffsetY)
	layer.Rotate(in.Angle)
	layer.SetFontFace(face)
	layer.SetColor(in.Shadow.Color)
	layer.DrawStringAnchored(in.Text, 0, -baselineLift(face, in), in.Style.AnchorX, in.Style.AnchorY)

	var shade image.Image = layer.Image()
	if in.Shadow.Blur > 0 {
		// Blur - радиус размытия, сигма гауссианы - половина от него
		shade = imaging.Blur(shade, in.Shadow.Blur/2)
	}

	draw.Draw(surface, b, shade, image.Point{}, draw.Over)
}

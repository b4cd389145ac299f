// Package service provides business-logic for the app
package service

import (
	"context"
	"errors"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/disintegration/imaging"
)

// DefaultMaxMergeImages - лимит картинок в одной склейке, если в конфиге ничего не задано
const DefaultMaxMergeImages = 10

type StudioService struct {
	decoder        SourceDecoder
	renderer       CompositeRenderer
	merger         ImageMerger
	measurer       imageproc.TextMeasurer
	maxMergeImages int
	maxPixels      int
}

// SourceDecoder - контракт декодера исходников
type SourceDecoder interface {
	Decode(ctx context.Context, src imageproc.Source) (*imageproc.Raster, error)
}

// CompositeRenderer - контракт отрисовки инструкций поверх растра
type CompositeRenderer interface {
	Render(ctx context.Context, raster *imageproc.Raster, instructions []imageproc.DrawInstruction) (*imageproc.OutputBuffer, error)
}

// ImageMerger - контракт склейки: сначала общий декод всех исходников, потом раскладка
type ImageMerger interface {
	DecodeAll(ctx context.Context, sources []imageproc.Source) ([]*imageproc.Raster, error)
	MergeRasters(ctx context.Context, rasters []*imageproc.Raster, dir model.Direction) (*imageproc.OutputBuffer, error)
}

// NewStudioService wires the engine; maxPixels bounds the canvas size accepted by Layout.
func NewStudioService(dec SourceDecoder, rnd CompositeRenderer, mrg ImageMerger, m imageproc.TextMeasurer, maxMergeImages, maxPixels int) *StudioService {
	if maxMergeImages < imageproc.MinMergeInputs {
		maxMergeImages = DefaultMaxMergeImages
	}
	if maxPixels <= 0 {
		maxPixels = imageproc.DefaultMaxPixels
	}
	return &StudioService{
		decoder:        dec,
		renderer:       rnd,
		merger:         mrg,
		measurer:       m,
		maxMergeImages: maxMergeImages,
		maxPixels:      maxPixels,
	}
}

func (s StudioService) Watermark(ctx context.Context, req *model.WatermarkRequest) (*model.Result, error) {
	inv := newInvocation(ctx, model.KindWatermark)

	// Валидируем запрос
	format, err := validateNormalizeWatermark(req)
	if err != nil {
		return nil, inv.fail(err)
	}

	raster, err := s.decoder.Decode(ctx, toSource(req.Source))
	if err != nil {
		return nil, inv.fail(err)
	}

	// исходник разрешен - дальше только вычисления
	inv.advance(model.StateComputing)

	// раскладка считается от ширины именно этого растра
	instructions, err := imageproc.ComputeInstructions(raster.Width(), raster.Height(), req.Spec, s.measurer)
	if err != nil {
		return nil, inv.fail(err)
	}

	buf, err := s.renderer.Render(ctx, raster, instructions)
	if err != nil {
		return nil, inv.fail(err)
	}

	return inv.finish(buf, format)
}

func (s StudioService) Merge(ctx context.Context, req *model.MergeRequest) (*model.Result, error) {
	inv := newInvocation(ctx, model.KindMerge)

	format, err := validateNormalizeMerge(req, s.maxMergeImages)
	if err != nil {
		return nil, inv.fail(err)
	}

	sources := make([]imageproc.Source, 0, len(req.Sources))
	for _, src := range req.Sources {
		sources = append(sources, toSource(src))
	}

	rasters, err := s.merger.DecodeAll(ctx, sources)
	if err != nil {
		return nil, inv.fail(err)
	}

	// все декоды завершились успешно
	inv.advance(model.StateComputing)

	buf, err := s.merger.MergeRasters(ctx, rasters, model.Direction(req.Direction))
	if err != nil {
		return nil, inv.fail(err)
	}

	return inv.finish(buf, format)
}

// Layout returns the draw instructions for a canvas without touching any pixels.
func (s StudioService) Layout(ctx context.Context, req *model.LayoutRequest) ([]imageproc.DrawInstruction, error) {
	if err := validateNormalizeLayout(req, s.maxPixels); err != nil {
		return nil, err
	}

	res, err := imageproc.ComputeInstructions(req.Width, req.Height, model.WatermarkSpec{Text: req.Text, Mode: model.Mode(req.Mode)}, s.measurer)
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		logger := loggerFrom(ctx)
		logger.Error().Err(err).Msg("Failed to compute watermark layout")
		return nil, model.ErrCommon500
	}
	return res, nil
}

func toSource(src model.SourceData) imageproc.Source {
	return imageproc.Source{Name: src.Name, Data: src.Data, Ref: src.Ref}
}

// isClientError - ошибки, которые отдаем клиенту как есть; остальное логируем и прячем за 500
func isClientError(err error) bool {
	for _, target := range []error{
		model.ErrEmptySource,
		model.ErrEmptyWMark,
		model.ErrIncorrectMode,
		model.ErrIncorrectDirection,
		model.ErrIncorrectAxis,
		model.ErrUnsupportedFormat,
		model.ErrInsufficientInputs,
		model.ErrTooManyImages,
		model.ErrDecodeFailed,
		model.ErrSurfaceUnavailable,
		model.ErrRemoteDisabled,
		model.ErrPayloadTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func exportResult(buf *imageproc.OutputBuffer, format imaging.Format) (*model.Result, error) {
	data, size, err := imageproc.Export(buf, format)
	if err != nil {
		return nil, err
	}
	return &model.Result{
		Width:       buf.Width(),
		Height:      buf.Height(),
		ContentType: model.GetCType[format],
		Size:        size,
		Data:        data,
	}, nil
}

package service

import (
	"context"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
)

// MOCK DECODER

type mockDecoder struct {
	decodeFn func(ctx context.Context, src imageproc.Source) (*imageproc.Raster, error)
}

func (m *mockDecoder) Decode(ctx context.Context, src imageproc.Source) (*imageproc.Raster, error) {
	return m.decodeFn(ctx, src)
}

// MOCK RENDERER

type mockRenderer struct {
	renderFn func(ctx context.Context, r *imageproc.Raster, ins []imageproc.DrawInstruction) (*imageproc.OutputBuffer, error)
}

func (m *mockRenderer) Render(ctx context.Context, r *imageproc.Raster, ins []imageproc.DrawInstruction) (*imageproc.OutputBuffer, error) {
	return m.renderFn(ctx, r, ins)
}

// MOCK MERGER

type mockMerger struct {
	decodeAllFn func(ctx context.Context, sources []imageproc.Source) ([]*imageproc.Raster, error)
	mergeFn     func(ctx context.Context, rasters []*imageproc.Raster, dir model.Direction) (*imageproc.OutputBuffer, error)
}

func (m *mockMerger) DecodeAll(ctx context.Context, sources []imageproc.Source) ([]*imageproc.Raster, error) {
	return m.decodeAllFn(ctx, sources)
}

func (m *mockMerger) MergeRasters(ctx context.Context, rasters []*imageproc.Raster, dir model.Direction) (*imageproc.OutputBuffer, error) {
	return m.mergeFn(ctx, rasters, dir)
}

// MOCK MEASURER

type mockMeasurer struct {
	width float64
	err   error
}

func (m mockMeasurer) MeasureString(string, float64, bool) (float64, error) {
	return m.width, m.err
}

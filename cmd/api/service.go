package main

import (
	"context"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
)

type StudioAPIService interface {
	Watermark(ctx context.Context, req *model.WatermarkRequest) (*model.Result, error)
	Merge(ctx context.Context, req *model.MergeRequest) (*model.Result, error)
	Layout(ctx context.Context, req *model.LayoutRequest) ([]imageproc.DrawInstruction, error)
}

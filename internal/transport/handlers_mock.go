package transport

import (
	"context"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/gin-gonic/gin"
)

type mockStudioService struct {
	watermarkFn func(ctx context.Context, req *model.WatermarkRequest) (*model.Result, error)
	mergeFn     func(ctx context.Context, req *model.MergeRequest) (*model.Result, error)
	layoutFn    func(ctx context.Context, req *model.LayoutRequest) ([]imageproc.DrawInstruction, error)
}

func (m *mockStudioService) Watermark(ctx context.Context, req *model.WatermarkRequest) (*model.Result, error) {
	return m.watermarkFn(ctx, req)
}

func (m *mockStudioService) Merge(ctx context.Context, req *model.MergeRequest) (*model.Result, error) {
	return m.mergeFn(ctx, req)
}

func (m *mockStudioService) Layout(ctx context.Context, req *model.LayoutRequest) ([]imageproc.DrawInstruction, error) {
	return m.layoutFn(ctx, req)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/UnendingLoop/WatermarkStudio/internal/mwlogger"
	"github.com/wb-go/wbf/ginext"
)

// DefaultMaxUploadBytes - 20 МБ на один файл
const DefaultMaxUploadBytes int64 = 20 << 20

type StudioHandler struct {
	service        StudioService
	maxUploadBytes int64
}

type StudioService interface {
	Watermark(ctx context.Context, req *model.WatermarkRequest) (*model.Result, error)         // наложить подпись на одну картинку
	Merge(ctx context.Context, req *model.MergeRequest) (*model.Result, error)                 // склеить несколько картинок
	Layout(ctx context.Context, req *model.LayoutRequest) ([]imageproc.DrawInstruction, error) // раскладка подписи без пикселей
}

func NewStudioHandler(svc StudioService, maxUploadBytes int64) *StudioHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &StudioHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h StudioHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h StudioHandler) Watermark(ctx *ginext.Context) {
	var req model.WatermarkRequest
	req.Spec.Text = ctx.PostForm("text")
	req.Spec.Mode = model.Mode(ctx.PostForm("mode"))
	req.Format = ctx.PostForm("format")

	// исходник: либо файл, либо ключ в хранилище
	imageHeader, err := ctx.FormFile("image")
	switch {
	case err == nil:
		src, err := h.readUpload(imageHeader)
		if err != nil {
			ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
			return
		}
		req.Source = src
	case ctx.PostForm("image_ref") != "":
		req.Source = model.SourceData{Ref: ctx.PostForm("image_ref")}
	default:
		ctx.JSON(400, map[string]string{"error": "image or image_ref is required"})
		return
	}

	res, err := h.service.Watermark(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	writeResult(ctx, res)
}

func (h StudioHandler) Merge(ctx *ginext.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "multipart form is required"})
		return
	}

	var req model.MergeRequest
	req.Direction = ctx.PostForm("direction")
	req.Format = ctx.PostForm("format")

	// сначала файлы в порядке загрузки, потом ключи из хранилища
	for _, fh := range form.File["images"] {
		src, err := h.readUpload(fh)
		if err != nil {
			ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
			return
		}
		req.Sources = append(req.Sources, src)
	}
	for _, ref := range form.Value["image_refs"] {
		req.Sources = append(req.Sources, model.SourceData{Ref: ref})
	}

	res, err := h.service.Merge(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	writeResult(ctx, res)
}

func (h StudioHandler) Layout(ctx *ginext.Context) {
	var req model.LayoutRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.Layout(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

// readUpload вычитывает файл целиком, но не больше лимита
func (h StudioHandler) readUpload(fh *multipart.FileHeader) (model.SourceData, error) {
	if fh.Size > h.maxUploadBytes {
		return model.SourceData{}, model.ErrPayloadTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return model.SourceData{}, model.ErrEmptySource
	}
	defer closeFileFlow(file)

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return model.SourceData{}, model.ErrEmptySource
	}
	if int64(len(data)) > h.maxUploadBytes {
		return model.SourceData{}, model.ErrPayloadTooLarge
	}

	return model.SourceData{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func writeResult(ctx *ginext.Context, res *model.Result) {
	ctx.Writer.Header().Set("Content-Type", res.ContentType)
	ctx.Writer.Header().Set("Content-Length", strconv.FormatInt(res.Size, 10))
	ctx.Writer.Header().Set("X-Invocation-Id", res.ID)
	ctx.Writer.Header().Set("X-Image-Width", strconv.Itoa(res.Width))
	ctx.Writer.Header().Set("X-Image-Height", strconv.Itoa(res.Height))
	ctx.Writer.WriteHeader(200)

	if n, err := io.Copy(ctx.Writer, res.Data); err != nil {
		logger := mwlogger.LoggerFromContext(ctx.Request.Context())
		logger.Error().
			Err(err).
			Int64("written", n).
			Str("invocation_id", res.ID).
			Msg("Failed to write response")
	}
}

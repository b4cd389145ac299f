// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"io"

	"github.com/disintegration/imaging"
)

type (
	Mode      string
	Direction string
	State     string
	Kind      string
)

const (
	ModeTiledDiagonal Mode = "tiled_diagonal"
	ModeSingleCorner  Mode = "single_corner"
)

var ModesMap = map[Mode]bool{
	ModeTiledDiagonal: true,
	ModeSingleCorner:  true,
}

const (
	DirHorizontal Direction = "horizontal"
	DirVertical   Direction = "vertical"
)

var DirectionsMap = map[Direction]bool{
	DirHorizontal: true,
	DirVertical:   true,
}

// Состояния одного вызова рендера/склейки
const (
	StatePending   State = "pending"
	StateComputing State = "computing"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

const (
	KindWatermark Kind = "watermark"
	KindMerge     Kind = "merge"
)

//---------------------

// WatermarkSpec - что и как рисуем поверх картинки. Размеры шрифта/отступов не храним - они считаются от ширины растра
type WatermarkSpec struct {
	Text string `json:"text"`
	Mode Mode   `json:"mode"`
}

// SourceData - одно входное изображение: либо загруженные байты, либо ключ объекта в хранилище
type SourceData struct {
	Name        string
	ContentType string
	Data        []byte
	Ref         string
}

type WatermarkRequest struct {
	Source SourceData
	Spec   WatermarkSpec
	Format string
}

type MergeRequest struct {
	Sources   []SourceData
	Direction string
	Format    string
}

// Result - закодированный итог одного вызова, отдается клиенту как есть
type Result struct {
	ID          string
	Kind        Kind
	State       State
	Width       int
	Height      int
	ContentType string
	Size        int64
	Data        io.Reader
}

type LayoutRequest struct {
	Width  int    `form:"width"`
	Height int    `form:"height"`
	Text   string `form:"text"`
	Mode   string `form:"mode"`
}

// ------------------

var (
	ErrCommon500          error = errors.New("something went wrong. Try again later")      // 500
	ErrEmptySource        error = errors.New("empty/incorrect source image provided")      // 400
	ErrEmptyWMark         error = errors.New("empty/incorrect watermark text provided")    // 400
	ErrIncorrectMode      error = errors.New("watermark mode is not supported")            // 400
	ErrIncorrectDirection error = errors.New("merge direction is not supported")           // 400
	ErrIncorrectAxis      error = errors.New("incorrect canvas dimensions provided")       // 400
	ErrUnsupportedFormat  error = errors.New("unsupported image format")                   // 400
	ErrInsufficientInputs error = errors.New("at least two images are required for merge") // 400
	ErrTooManyImages      error = errors.New("too many images provided for merge")         // 400
	ErrDecodeFailed       error = errors.New("failed to decode source image")              // 400
	ErrSurfaceUnavailable error = errors.New("rendering surface is unavailable")           // 413
	ErrRemoteDisabled     error = errors.New("remote image sources are not configured")    // 400
	ErrPayloadTooLarge    error = errors.New("uploaded image exceeds size limit")          // 413
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
)

// InImageTypeMap - какие content-type принимаем на вход. Пустой тип допускаем - формат все равно определит декодер
var InImageTypeMap = map[string]bool{
	JPEG:                       true,
	PNG:                        true,
	GIF:                        true,
	WEBP:                       true,
	"":                         true,
	"application/octet-stream": true,
}

// OutFormatMap - форматы экспорта результата
var OutFormatMap = map[string]imaging.Format{
	"png":  imaging.PNG,
	"jpeg": imaging.JPEG,
	"jpg":  imaging.JPEG,
}

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.PNG:  PNG,
}

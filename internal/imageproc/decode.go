package imageproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"

	// регистрируем декодеры: jpeg/png/gif из stdlib + webp
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Raster is a decoded image with known intrinsic dimensions. It is never mutated after decode.
type Raster struct {
	img    image.Image
	width  int
	height int
	format string
}

// NewRaster wraps an already decoded image.
func NewRaster(img image.Image, format string) (*Raster, error) {
	if img == nil {
		return nil, errors.New("nil image provided")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}
	return &Raster{img: img, width: b.Dx(), height: b.Dy(), format: format}, nil
}

func (r *Raster) Width() int { return r.width }

func (r *Raster) Height() int { return r.height }

func (r *Raster) Format() string { return r.format }

func (r *Raster) Image() image.Image { return r.img }

func (r *Raster) Size() image.Point { return image.Pt(r.width, r.height) }

// Source - непрозрачный источник растра: байты загрузки или ключ объекта в хранилище
type Source struct {
	Name string
	Data []byte
	Ref  string
}

// Fetcher - контракт для получения удаленных исходников
type Fetcher interface {
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
}

// DecodeError describes a source that could not be turned into a Raster.
type DecodeError struct {
	Index  int
	Source string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode source #%d %q: %s: %v", e.Index, e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode source #%d %q: %s", e.Index, e.Source, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is позволяет проверять любую ошибку декодирования через errors.Is(err, model.ErrDecodeFailed)
func (e *DecodeError) Is(target error) bool { return target == model.ErrDecodeFailed }

// DefaultMaxSourceBytes - потолок для объекта из хранилища, как и для загрузки
const DefaultMaxSourceBytes int64 = 20 << 20

type Decoder struct {
	fetcher        Fetcher
	surfaces       *Surfaces
	maxSourceBytes int64
}

// NewDecoder creates a decoder; fetcher may be nil, then only byte sources are accepted.
// Images whose header declares more pixels than surfaces allow are rejected before the full decode.
func NewDecoder(f Fetcher, surfaces *Surfaces, maxSourceBytes int64) *Decoder {
	if surfaces == nil {
		surfaces = NewSurfaces(0)
	}
	if maxSourceBytes <= 0 {
		maxSourceBytes = DefaultMaxSourceBytes
	}
	return &Decoder{fetcher: f, surfaces: surfaces, maxSourceBytes: maxSourceBytes}
}

// Decode turns a source into a Raster. EXIF orientation of photos is applied.
func (d *Decoder) Decode(ctx context.Context, src Source) (*Raster, error) {
	data, err := d.load(ctx, src)
	if err != nil {
		return nil, err
	}

	// сначала только заголовок - чтобы узнать формат и не гонять полный декод на мусоре
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Source: src.label(), Reason: "unsupported or broken image", Err: err}
	}
	// поворот по EXIF меняет местами стороны, но не площадь
	if err := d.surfaces.Fits(cfg.Width, cfg.Height); err != nil {
		return nil, &DecodeError{Source: src.label(), Reason: "image is too large", Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Source: src.label(), Reason: "truncated or corrupted " + format, Err: err}
	}

	raster, err := NewRaster(img, format)
	if err != nil {
		return nil, &DecodeError{Source: src.label(), Reason: "empty image", Err: err}
	}
	return raster, nil
}

func (d *Decoder) load(ctx context.Context, src Source) ([]byte, error) {
	switch {
	case len(src.Data) > 0:
		return src.Data, nil
	case src.Ref != "":
		if d.fetcher == nil {
			return nil, &DecodeError{Source: src.label(), Reason: "remote source", Err: model.ErrRemoteDisabled}
		}
		rc, _, err := d.fetcher.Get(ctx, src.Ref)
		if err != nil {
			return nil, &DecodeError{Source: src.label(), Reason: "failed to fetch remote source", Err: err}
		}
		defer closeFileFlow(rc)

		data, err := io.ReadAll(io.LimitReader(rc, d.maxSourceBytes+1))
		if err != nil {
			return nil, &DecodeError{Source: src.label(), Reason: "failed to read remote source", Err: err}
		}
		if int64(len(data)) > d.maxSourceBytes {
			return nil, &DecodeError{Source: src.label(), Reason: "remote source", Err: model.ErrPayloadTooLarge}
		}
		if len(data) == 0 {
			return nil, &DecodeError{Source: src.label(), Reason: "remote source is empty"}
		}
		return data, nil
	default:
		return nil, &DecodeError{Source: src.label(), Reason: "empty source"}
	}
}

func (s Source) label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Ref != "":
		return s.Ref
	default:
		return "upload"
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("Decoder failed to close fileflow")
	}
}

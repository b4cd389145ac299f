package imageproc

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/UnendingLoop/WatermarkStudio/internal/mwlogger"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/image/draw"
)

// MinMergeInputs - меньше двух картинок склеивать нечего
const MinMergeInputs = 2

// Merger concatenates several rasters along one axis into a single canvas.
type Merger struct {
	decoder     *Decoder
	surfaces    *Surfaces
	parallelism int
}

// NewMerger creates a merger; parallelism <= 0 means GOMAXPROCS concurrent decodes.
func NewMerger(d *Decoder, s *Surfaces, parallelism int) *Merger {
	// conc трактует 0 как GOMAXPROCS, а отрицательное значение не запустит ни одной горутины
	if parallelism < 0 {
		parallelism = 0
	}
	return &Merger{decoder: d, surfaces: s, parallelism: parallelism}
}

// Merge decodes every source, waits until all of them settle and then draws them in input order.
// Any single decode failure aborts the merge and no buffer is produced.
func (m *Merger) Merge(ctx context.Context, sources []Source, dir model.Direction) (*OutputBuffer, error) {
	if len(sources) < MinMergeInputs {
		return nil, model.ErrInsufficientInputs
	}
	if !model.DirectionsMap[dir] {
		return nil, model.ErrIncorrectDirection
	}

	rasters, err := m.DecodeAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	return m.MergeRasters(ctx, rasters, dir)
}

type decoded struct {
	raster *Raster
	err    error
}

// DecodeAll is the join over all decodes of a merge: it returns only after every decode has settled.
// On failure the error of the lowest input index is reported, independent of completion order.
func (m *Merger) DecodeAll(ctx context.Context, sources []Source) ([]*Raster, error) {
	mapper := iter.Mapper[Source, decoded]{MaxGoroutines: m.parallelism}
	results := mapper.Map(sources, func(src *Source) decoded {
		r, err := m.decoder.Decode(ctx, *src)
		return decoded{raster: r, err: err}
	})

	rasters := make([]*Raster, len(results))
	for i, res := range results {
		if res.err != nil {
			var dErr *DecodeError
			if errors.As(res.err, &dErr) {
				dErr.Index = i
				return nil, dErr
			}
			return nil, &DecodeError{Index: i, Source: sources[i].label(), Reason: "decode failed", Err: res.err}
		}
		rasters[i] = res.raster
	}
	return rasters, nil
}

// MergeRasters draws already decoded rasters; the cross axis is top/left aligned, leftover area stays transparent.
func (m *Merger) MergeRasters(ctx context.Context, rasters []*Raster, dir model.Direction) (*OutputBuffer, error) {
	if len(rasters) < MinMergeInputs {
		return nil, model.ErrInsufficientInputs
	}

	sizes := make([]image.Point, len(rasters))
	for i, r := range rasters {
		if r == nil {
			return nil, fmt.Errorf("nil raster #%d provided to MergeRasters", i)
		}
		sizes[i] = r.Size()
	}

	size, offsets, err := MergeLayout(sizes, dir)
	if err != nil {
		return nil, err
	}

	surface, err := m.surfaces.Acquire(size.X, size.Y)
	if err != nil {
		return nil, err
	}

	for i, r := range rasters {
		src := r.Image()
		draw.Copy(surface, offsets[i], src, src.Bounds(), draw.Over, nil)
	}

	logger := mwlogger.LoggerFromContext(ctx)
	logger.Debug().
		Int("images", len(rasters)).
		Str("direction", string(dir)).
		Int("width", size.X).
		Int("height", size.Y).
		Msg("Images merged")

	return newOutputBuffer(surface), nil
}

// MergeLayout computes the output canvas size and the top-left offset of every input, in input order.
func MergeLayout(sizes []image.Point, dir model.Direction) (image.Point, []image.Point, error) {
	var out image.Point
	offsets := make([]image.Point, len(sizes))

	for i, s := range sizes {
		if s.X <= 0 || s.Y <= 0 {
			return image.Point{}, nil, fmt.Errorf("%w: image #%d has size %dx%d", model.ErrIncorrectAxis, i, s.X, s.Y)
		}
		switch dir {
		case model.DirHorizontal:
			offsets[i] = image.Pt(out.X, 0)
			out.X += s.X
			out.Y = max(out.Y, s.Y)
		case model.DirVertical:
			offsets[i] = image.Pt(0, out.Y)
			out.Y += s.Y
			out.X = max(out.X, s.X)
		default:
			return image.Point{}, nil, model.ErrIncorrectDirection
		}
	}

	return out, offsets, nil
}

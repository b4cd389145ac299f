package imageproc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestDecoderDecode(t *testing.T) {
	pngData := testImageBytes(t, 40, 30, imaging.PNG)

	tests := []struct {
		name       string
		src        Source
		fetcher    Fetcher
		maxPixels  int
		maxBytes   int64
		wantW      int
		wantH      int
		wantFormat string
		wantErrIs  error
	}{
		{name: "png upload", src: Source{Name: "a.png", Data: pngData}, wantW: 40, wantH: 30, wantFormat: "png"},
		{name: "jpeg upload", src: Source{Data: testImageBytes(t, 25, 50, imaging.JPEG)}, wantW: 25, wantH: 50, wantFormat: "jpeg"},
		{name: "gif upload", src: Source{Data: testImageBytes(t, 16, 8, imaging.GIF)}, wantW: 16, wantH: 8, wantFormat: "gif"},
		{name: "not an image", src: Source{Name: "x.txt", Data: []byte("not-an-image")}, wantErrIs: model.ErrDecodeFailed},
		{name: "truncated png", src: Source{Data: pngData[:len(pngData)/2]}, wantErrIs: model.ErrDecodeFailed},
		{name: "empty source", src: Source{}, wantErrIs: model.ErrDecodeFailed},
		{name: "remote without fetcher", src: Source{Ref: "photos/1.png"}, wantErrIs: model.ErrRemoteDisabled},
		{
			name: "remote source",
			src:  Source{Ref: "photos/1.png"},
			fetcher: &fakeFetcher{GetFunc: func(_ context.Context, key string) (io.ReadCloser, string, error) {
				if key != "photos/1.png" {
					return nil, "", errors.New("unexpected key")
				}
				return io.NopCloser(bytes.NewReader(pngData)), model.PNG, nil
			}},
			wantW: 40, wantH: 30, wantFormat: "png",
		},
		{
			name: "remote fetch failure",
			src:  Source{Ref: "photos/404.png"},
			fetcher: &fakeFetcher{GetFunc: func(context.Context, string) (io.ReadCloser, string, error) {
				return nil, "", errors.New("no such key")
			}},
			wantErrIs: model.ErrDecodeFailed,
		},
		{
			name: "remote empty object",
			src:  Source{Ref: "photos/empty.png"},
			fetcher: &fakeFetcher{GetFunc: func(context.Context, string) (io.ReadCloser, string, error) {
				return io.NopCloser(bytes.NewReader(nil)), model.PNG, nil
			}},
			wantErrIs: model.ErrDecodeFailed,
		},
		{
			// 40x30 = 1200 пикселей в заголовке при бюджете 1000
			name:      "header exceeds pixel budget",
			src:       Source{Name: "big.png", Data: pngData},
			maxPixels: 1000,
			wantErrIs: model.ErrSurfaceUnavailable,
		},
		{
			name:      "header exactly at pixel budget",
			src:       Source{Data: pngData},
			maxPixels: 1200,
			wantW:     40, wantH: 30, wantFormat: "png",
		},
		{
			name:     "remote object over byte limit",
			src:      Source{Ref: "photos/huge.png"},
			maxBytes: 64,
			fetcher: &fakeFetcher{GetFunc: func(context.Context, string) (io.ReadCloser, string, error) {
				return io.NopCloser(bytes.NewReader(make([]byte, 65))), model.PNG, nil
			}},
			wantErrIs: model.ErrPayloadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.fetcher, NewSurfaces(tt.maxPixels), tt.maxBytes)

			r, err := d.Decode(context.Background(), tt.src)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				require.Nil(t, r)

				var dErr *DecodeError
				require.ErrorAs(t, err, &dErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantW, r.Width())
			require.Equal(t, tt.wantH, r.Height())
			require.Equal(t, tt.wantFormat, r.Format())
			require.Equal(t, tt.wantW, r.Image().Bounds().Dx())
		})
	}
}

// заголовок огромной картинки весит копейки, полный декод до проверки бюджета съел бы сотни МБ
func TestDecoderRejectsHugeHeaderBeforeDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, image.NewGray(image.Rect(0, 0, 3000, 3000)), imaging.PNG))

	d := NewDecoder(nil, NewSurfaces(1_000_000), 0)
	r, err := d.Decode(context.Background(), Source{Name: "zeros.png", Data: buf.Bytes()})
	require.Nil(t, r)
	require.ErrorIs(t, err, model.ErrSurfaceUnavailable)
	require.ErrorIs(t, err, model.ErrDecodeFailed)
	require.Contains(t, err.Error(), "3000x3000")
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Index: 2, Source: "c.png", Reason: "empty source"}
	require.Equal(t, `decode source #2 "c.png": empty source`, err.Error())
	require.ErrorIs(t, err, model.ErrDecodeFailed)

	wrapped := &DecodeError{Index: 0, Source: "k", Reason: "remote source", Err: model.ErrRemoteDisabled}
	require.Contains(t, wrapped.Error(), model.ErrRemoteDisabled.Error())
	require.ErrorIs(t, wrapped, model.ErrRemoteDisabled)
}

func TestNewRaster(t *testing.T) {
	_, err := NewRaster(nil, "png")
	require.Error(t, err)

	_, err = NewRaster(testImage(0, 10, white), "png")
	require.Error(t, err)

	r, err := NewRaster(testImage(3, 4, white), "png")
	require.NoError(t, err)
	require.Equal(t, 3, r.Size().X)
	require.Equal(t, 4, r.Size().Y)
}

func TestLoadFontSet(t *testing.T) {
	fonts, err := LoadFontSet("", "")
	require.NoError(t, err)

	w, err := fonts.MeasureString("Watermark", 24, true)
	require.NoError(t, err)
	require.Greater(t, w, 0.0)

	// ширина растет вместе с кеглем
	w2, err := fonts.MeasureString("Watermark", 48, true)
	require.NoError(t, err)
	require.Greater(t, w2, w)

	empty, err := fonts.MeasureString("", 24, false)
	require.NoError(t, err)
	require.Zero(t, empty)

	_, err = fonts.Face(0, false)
	require.Error(t, err)

	dir := t.TempDir()
	regPath := filepath.Join(dir, "regular.ttf")
	require.NoError(t, os.WriteFile(regPath, goregular.TTF, 0o600))

	fonts, err = LoadFontSet(regPath, "")
	require.NoError(t, err)
	_, err = fonts.MeasureString("x", 12, false)
	require.NoError(t, err)

	_, err = LoadFontSet(filepath.Join(dir, "missing.ttf"), "")
	require.Error(t, err)

	brokenPath := filepath.Join(dir, "broken.ttf")
	require.NoError(t, os.WriteFile(brokenPath, []byte("not a font"), 0o600))
	_, err = LoadFontSet("", brokenPath)
	require.Error(t, err)
}

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/disintegration/imaging"
)

// MaxWatermarkRunes - длиннее подпись на картинке все равно не читается
const MaxWatermarkRunes = 200

func validateNormalizeWatermark(req *model.WatermarkRequest) (imaging.Format, error) {
	if req == nil {
		return 0, model.ErrEmptySource
	}

	// корректен ли исходник
	if err := validateSource(&req.Source); err != nil {
		return 0, err
	}

	// корректен ли текст
	text, err := normalizeText(req.Spec.Text)
	if err != nil {
		return 0, err
	}
	req.Spec.Text = text

	// режим: пустой - по дефолту плитка
	mode, err := normalizeMode(string(req.Spec.Mode))
	if err != nil {
		return 0, err
	}
	req.Spec.Mode = mode

	return normalizeFormat(&req.Format)
}

func validateNormalizeMerge(req *model.MergeRequest, maxImages int) (imaging.Format, error) {
	if req == nil || len(req.Sources) < imageproc.MinMergeInputs {
		return 0, model.ErrInsufficientInputs
	}
	if len(req.Sources) > maxImages {
		return 0, model.ErrTooManyImages
	}

	for i := range req.Sources {
		if err := validateSource(&req.Sources[i]); err != nil {
			return 0, err
		}
	}

	// направление: пустое - по дефолту горизонталь
	req.Direction = strings.ToLower(strings.TrimSpace(req.Direction))
	if req.Direction == "" {
		req.Direction = string(model.DirHorizontal)
	}
	if !model.DirectionsMap[model.Direction(req.Direction)] {
		return 0, model.ErrIncorrectDirection
	}

	return normalizeFormat(&req.Format)
}

func validateNormalizeLayout(req *model.LayoutRequest, maxPixels int) error {
	if req == nil || req.Width <= 0 || req.Height <= 0 {
		return model.ErrIncorrectAxis
	}
	// холст, который нельзя отрендерить, не раскладываем: число плиток растет с площадью
	if req.Width > maxPixels/req.Height {
		return fmt.Errorf("%w: %dx%d exceeds limit of %d pixels", model.ErrSurfaceUnavailable, req.Width, req.Height, maxPixels)
	}

	text, err := normalizeText(req.Text)
	if err != nil {
		return err
	}
	req.Text = text

	mode, err := normalizeMode(req.Mode)
	if err != nil {
		return err
	}
	req.Mode = string(mode)

	return nil
}

func validateSource(src *model.SourceData) error {
	src.Ref = strings.TrimSpace(src.Ref)
	switch {
	case len(src.Data) > 0:
		// content-type только подсказка, реальный формат определит декодер
		src.ContentType = strings.ToLower(strings.TrimSpace(src.ContentType))
		if !model.InImageTypeMap[src.ContentType] {
			return model.ErrUnsupportedFormat
		}
		return nil
	case src.Ref != "":
		return nil
	default:
		return model.ErrEmptySource
	}
}

// normalizeText проверяет подпись; пробелы по краям учитываются только при проверке на пустоту, рисуется текст как есть
func normalizeText(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" || utf8.RuneCountInString(raw) > MaxWatermarkRunes || !utf8.ValidString(raw) {
		return "", model.ErrEmptyWMark
	}
	return raw, nil
}

func normalizeMode(raw string) (model.Mode, error) {
	mode := model.Mode(strings.ToLower(strings.TrimSpace(raw)))
	if mode == "" {
		return model.ModeTiledDiagonal, nil
	}
	if !model.ModesMap[mode] {
		return "", model.ErrIncorrectMode
	}
	return mode, nil
}

func normalizeFormat(raw *string) (imaging.Format, error) {
	*raw = strings.ToLower(strings.TrimSpace(*raw))
	if *raw == "" {
		*raw = "png"
	}
	format, ok := model.OutFormatMap[*raw]
	if !ok {
		return 0, model.ErrUnsupportedFormat
	}
	return format, nil
}

package transport

import (
	"errors"
	"io"
	"log"

	"github.com/UnendingLoop/WatermarkStudio/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrSurfaceUnavailable),
		errors.Is(err, model.ErrPayloadTooLarge):
		return 413
	case errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrEmptyWMark),
		errors.Is(err, model.ErrIncorrectMode),
		errors.Is(err, model.ErrIncorrectDirection),
		errors.Is(err, model.ErrIncorrectAxis),
		errors.Is(err, model.ErrUnsupportedFormat),
		errors.Is(err, model.ErrInsufficientInputs),
		errors.Is(err, model.ErrTooManyImages),
		errors.Is(err, model.ErrDecodeFailed),
		errors.Is(err, model.ErrRemoteDisabled):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}

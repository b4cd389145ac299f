package service

import (
	"context"
	"fmt"

	"github.com/UnendingLoop/WatermarkStudio/internal/imageproc"
	"github.com/UnendingLoop/WatermarkStudio/internal/model"
	"github.com/UnendingLoop/WatermarkStudio/internal/mwlogger"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// допустимые переходы; Failed достижим и из Pending (невалидный запрос), и из Computing
var transitions = map[model.State][]model.State{
	model.StatePending:   {model.StateComputing, model.StateFailed},
	model.StateComputing: {model.StateReady, model.StateFailed},
}

// invocation - один вызов рендера/склейки со своим id и состоянием
type invocation struct {
	id     string
	kind   model.Kind
	state  model.State
	logger zlog.Zerolog
}

func newInvocation(ctx context.Context, kind model.Kind) *invocation {
	id := uuid.New().String()
	inv := &invocation{
		id:    id,
		kind:  kind,
		state: model.StatePending,
		logger: loggerFrom(ctx).With().
			Str("invocation_id", id).
			Str("kind", string(kind)).
			Logger(),
	}
	inv.logger.Debug().Str("state", string(inv.state)).Msg("Invocation created")
	return inv
}

func (inv *invocation) advance(next model.State) {
	for _, allowed := range transitions[inv.state] {
		if allowed == next {
			inv.logger.Debug().
				Str("from", string(inv.state)).
				Str("to", string(next)).
				Msg("Invocation state changed")
			inv.state = next
			return
		}
	}
	// сюда попадаем только при ошибке в коде сервиса
	panic(fmt.Sprintf("invalid invocation transition %s -> %s", inv.state, next))
}

// fail переводит вызов в Failed; клиентские ошибки возвращаются как есть, прочие логируются и превращаются в 500
func (inv *invocation) fail(err error) error {
	inv.advance(model.StateFailed)

	if isClientError(err) {
		inv.logger.Debug().Err(err).Msg("Invocation rejected")
		return err
	}
	inv.logger.Error().Err(err).Msg("Invocation failed")
	return model.ErrCommon500
}

func (inv *invocation) finish(buf *imageproc.OutputBuffer, format imaging.Format) (*model.Result, error) {
	res, err := exportResult(buf, format)
	if err != nil {
		return nil, inv.fail(err)
	}

	inv.advance(model.StateReady)
	res.ID = inv.id
	res.Kind = inv.kind
	res.State = inv.state

	inv.logger.Info().
		Int("width", res.Width).
		Int("height", res.Height).
		Int64("bytes", res.Size).
		Msg("Invocation ready")
	return res, nil
}

func loggerFrom(ctx context.Context) zlog.Zerolog {
	return mwlogger.LoggerFromContext(ctx)
}

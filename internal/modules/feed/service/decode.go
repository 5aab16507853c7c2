package service

import (
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"option_chain/internal/models"
)

var (
	ErrEmptyFrame   = errors.New("feed: frame has neither event nor data")
	ErrUnknownEvent = errors.New("feed: unknown event")
)

type envelope struct {
	Event string         `json:"event"`
	Data  *models.Update `json:"data"`
}

// Decode разбирает кадр фида:
//
//	{"event":"dataUpdate","data":{"CE":[...],"PE":[...]}}
//	{"event":"resync"}
//
// Кадр без event, но с data считается dataUpdate. Отсутствующие CE/PE дают пустые списки.
func Decode(frame []byte) (models.Message, error) {
	var env envelope
	if err := sonic.Unmarshal(frame, &env); err != nil {
		return models.Message{}, errors.Wrap(err, "feed: decode frame")
	}

	switch env.Event {
	case models.EventResync:
		return models.Message{Event: models.EventResync}, nil
	case "":
		if env.Data == nil {
			return models.Message{}, ErrEmptyFrame
		}
		fallthrough
	case models.EventDataUpdate:
		msg := models.Message{Event: models.EventDataUpdate}
		if env.Data != nil {
			msg.Update = *env.Data
		}
		return msg, nil
	default:
		return models.Message{}, errors.Wrapf(ErrUnknownEvent, "%q", env.Event)
	}
}

// метка для feed_messages_total
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownEvent):
		return "ignored"
	default:
		return "invalid"
	}
}

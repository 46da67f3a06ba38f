package app

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dsprenkels/maruska/internal/client"
	"github.com/dsprenkels/maruska/internal/media"
	"github.com/dsprenkels/maruska/internal/protocol"
)

// Source is the receiving side of a comet channel.
type Source interface {
	Inbound() <-chan json.RawMessage
	Errors() <-chan error
	Done() <-chan struct{}
}

// Follow feeds inbound messages to cl and logs what happens until ctx is
// done. It is the --no-tui mode.
func Follow(ctx context.Context, src Source, cl *client.Client, log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-src.Done():
			log.Info().Msg("channel closed")
			return nil
		case raw := <-src.Inbound():
			handleInbound(cl, raw, log, time.Now())
		case err := <-src.Errors():
			log.Warn().Err(err).Msg("exchange failed")
		}
	}
}

func handleInbound(cl *client.Client, raw []byte, log zerolog.Logger, now time.Time) {
	ev, err := cl.HandleMessage(raw)
	switch {
	case errors.Is(err, protocol.ErrUnknownMessageKind):
		log.Debug().Err(err).Msg("ignoring message")
		return
	case errors.Is(err, client.ErrProtocolViolation):
		log.Error().Err(err).Msg("server broke the protocol")
		return
	case err != nil:
		log.Warn().Err(err).Msg("message rejected")
		return
	}

	switch m := ev.(type) {
	case protocol.PlayingUpdate:
		if m.Playing == nil {
			log.Info().Msg("nothing playing")
			return
		}
		log.Info().
			Str("by", m.Playing.RequestedBy()).
			Str("artist", m.Playing.Media.Artist).
			Str("title", m.Playing.Media.Title).
			Str("remaining", media.FormatDuration(m.Playing.Remaining(now))).
			Msg("now playing")
	case protocol.RequestsUpdate:
		log.Info().
			Int("requests", len(m.Requests)).
			Str("length", media.FormatDuration(media.QueueLength(cl.Playing(), m.Requests, now))).
			Msg("queue updated")
	case protocol.LoggedIn:
		log.Info().Msg("logged in")
	case protocol.LoginError:
		log.Warn().Str("reason", m.Message).Msg("login failed")
	case protocol.QueryMediaResults:
		results, done := cl.Results()
		log.Debug().Uint64("token", m.Token).Int("results", len(results)).Bool("done", done).Msg("search results")
	default:
		log.Debug().Str("type", ev.Kind()).Msg("message")
	}
}

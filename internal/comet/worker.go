package comet

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/thejerf/suture/v4"

	"github.com/dsprenkels/maruska/internal/protocol"
	"github.com/dsprenkels/maruska/internal/wire"
)

// Serve runs the workers under a supervisor until ctx is done. It
// implements suture.Service so the channel can sit in a larger tree.
func (c *Channel) Serve(ctx context.Context) error {
	sup := suture.New("comet", suture.Spec{
		EventHook:        c.hook,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
	for i := 1; i <= Workers; i++ {
		sup.Add(&worker{c: c, id: i})
	}
	return sup.Serve(ctx)
}

// worker is one long-poll loop. pending survives supervisor restarts so a
// batch that failed to send is retried rather than lost.
type worker struct {
	c       *Channel
	id      int
	pending []json.RawMessage
}

func (w *worker) String() string {
	return fmt.Sprintf("comet-worker-%d", w.id)
}

func (w *worker) Serve(ctx context.Context) error {
	log := w.c.log.With().Int("worker", w.id).Logger()
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := w.step(ctx)
		switch {
		case err == nil:
			failures = 0
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrClosed):
			return suture.ErrDoNotRestart
		case errors.Is(err, wire.ErrMalformedResponse):
			failures = 0
			log.Warn().Err(err).Msg("dropping malformed response")
			w.c.report(err)
		default:
			failures++
			w.c.report(err)
			if failures >= w.c.retries {
				return fmt.Errorf("%s: giving up after %d attempts: %w", w, failures, err)
			}
			delay := calculateBackoff(failures-1, w.c.retryBase)
			log.Warn().Err(err).Int("failures", failures).Dur("backoff", delay).Msg("exchange failed")
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
}

// step runs one iteration: flush queued messages, else poll if idle, else
// wait for the next queued message.
func (w *worker) step(ctx context.Context) error {
	if len(w.pending) == 0 {
		w.pending = w.c.drainOutbound()
	}
	if len(w.pending) > 0 {
		return w.flush(ctx)
	}

	polled, err := w.c.pollIfIdle(ctx)
	if polled || err != nil {
		return err
	}

	batch, err := w.c.awaitOutbound(ctx)
	if err != nil {
		return err
	}
	w.pending = batch
	return w.flush(ctx)
}

func (w *worker) flush(ctx context.Context) error {
	err := w.c.send(ctx, w.pending)
	switch {
	case err == nil || errors.Is(err, wire.ErrMalformedResponse):
		w.pending = nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		// The server may have acted on the batch before the deadline.
		w.pending = w.c.withoutRequests(w.pending)
	}
	return err
}

// withoutRequests removes playback requests from a batch whose outcome is
// unknown, so a retry cannot queue the same media twice. The other
// messages are safe to resend.
func (c *Channel) withoutRequests(batch []json.RawMessage) []json.RawMessage {
	kept := batch[:0]
	for _, raw := range batch {
		if typ, err := wire.MessageType(raw); err == nil && typ == protocol.TypeRequest {
			c.metrics.Dropped.WithLabelValues("timeout").Inc()
			c.log.Warn().RawJSON("message", raw).Msg("not resending request after timeout")
			c.report(fmt.Errorf("%w: request may not have been queued", ErrRequestTimedOut))
			continue
		}
		kept = append(kept, raw)
	}
	return kept
}

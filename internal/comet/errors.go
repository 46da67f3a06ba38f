package comet

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyConnected is returned by Connect once a session exists or
	// requests are in flight.
	ErrAlreadyConnected = errors.New("comet: already connected")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("comet: channel closed")
	// ErrQueueFull is returned by Enqueue when the outbound queue has no
	// room left.
	ErrQueueFull = errors.New("comet: outbound queue full")
	// ErrRequestTimedOut is reported on Errors when a playback request timed
	// out and is not resent.
	ErrRequestTimedOut = errors.New("comet: request timed out")
	// ErrSaturated means both request slots are taken.
	ErrSaturated = errors.New("comet: too many requests in flight")
)

// TransportError reports a failed HTTP exchange.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("comet %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

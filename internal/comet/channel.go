package comet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/thejerf/suture/v4"
	"golang.org/x/time/rate"

	"github.com/dsprenkels/maruska/internal/wire"
)

// Workers is the number of long-poll workers Serve runs.
const Workers = 2

const (
	defaultUserAgent      = "maruska"
	defaultRequestTimeout = 90 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBase      = time.Second
	defaultPollRate       = 4
	defaultQueueSize      = 256
	inboundBuffer         = 128
	errorBuffer           = 16
	maxResponseBytes      = 16 << 20
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// HealthReporter receives the outcome of every exchange.
type HealthReporter interface {
	RecordExchange(session string, err error)
}

// Channel is a comet session with the server.
type Channel struct {
	endpoint  string
	http      Doer
	userAgent string
	timeout   time.Duration
	retries   int
	retryBase time.Duration
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	metrics   *Metrics
	health    HealthReporter
	hook      suture.EventHook
	log       zerolog.Logger
	queueSize int

	ops      chan func(*session)
	outbound chan json.RawMessage
	inbound  chan json.RawMessage
	errs     chan error

	stop      chan struct{}
	closeOnce sync.Once
}

// Option configures a Channel.
type Option func(*Channel)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(d Doer) Option { return func(c *Channel) { c.http = d } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Channel) { c.userAgent = ua } }

// WithRequestTimeout bounds every request, including long polls.
func WithRequestTimeout(d time.Duration) Option { return func(c *Channel) { c.timeout = d } }

// WithRetry sets how often a worker tries a failing exchange and the
// initial backoff between tries.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *Channel) {
		c.retries = attempts
		c.retryBase = base
	}
}

// WithPollRate limits polls to perSecond.
func WithPollRate(perSecond float64) Option {
	return func(c *Channel) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithMetrics records Prometheus metrics.
func WithMetrics(m *Metrics) Option { return func(c *Channel) { c.metrics = m } }

// WithHealth reports every exchange to h.
func WithHealth(h HealthReporter) Option { return func(c *Channel) { c.health = h } }

// WithEventHook receives the worker supervisor's events.
func WithEventHook(h suture.EventHook) Option { return func(c *Channel) { c.hook = h } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Channel) { c.log = l } }

// WithQueueSize sets the outbound queue capacity.
func WithQueueSize(n int) Option { return func(c *Channel) { c.queueSize = n } }

// New builds a Channel for the comet endpoint. It does not touch the
// network; call Connect and then Serve.
func New(endpoint string, opts ...Option) (*Channel, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		endpoint:  u.String(),
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		timeout:   defaultRequestTimeout,
		retries:   defaultRetryAttempts,
		retryBase: defaultRetryBase,
		limiter:   rate.NewLimiter(defaultPollRate, 1),
		log:       zerolog.Nop(),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	if c.retries < 1 {
		c.retries = 1
	}
	if c.queueSize < 1 {
		c.queueSize = defaultQueueSize
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "comet",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	c.ops = make(chan func(*session))
	c.outbound = make(chan json.RawMessage, c.queueSize)
	c.inbound = make(chan json.RawMessage, inboundBuffer)
	c.errs = make(chan error, errorBuffer)
	c.stop = make(chan struct{})
	go c.run()
	return c, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("comet endpoint is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse comet endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("comet endpoint %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("comet endpoint %q: missing host", raw)
	}
	u.Fragment = ""
	return u, nil
}

// Endpoint returns the URL every request is posted to.
func (c *Channel) Endpoint() string { return c.endpoint }

func (c *Channel) String() string { return "comet " + c.endpoint }

// Inbound yields server messages in the order their responses arrived.
func (c *Channel) Inbound() <-chan json.RawMessage { return c.inbound }

// Done is closed once the channel is closed. Nothing more arrives on
// Inbound or Errors after that.
func (c *Channel) Done() <-chan struct{} { return c.stop }

// Errors yields failed exchanges for display. Errors are dropped when
// nobody is reading.
func (c *Channel) Errors() <-chan error { return c.errs }

// Enqueue marshals msg and appends it to the outbound queue. It never
// blocks: when the queue is full, because the server has stopped answering,
// it returns ErrQueueFull and the message is not sent.
func (c *Channel) Enqueue(msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	select {
	case <-c.stop:
		return ErrClosed
	default:
	}
	select {
	case c.outbound <- raw:
		return nil
	default:
		c.metrics.Dropped.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// Close stops the session goroutine. Pending and future operations fail
// with ErrClosed.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}

// Connect performs the initial handshake: an empty batch whose response
// carries the first session id.
func (c *Channel) Connect(ctx context.Context) error {
	if _, err := c.acquire(slotConnect); err != nil {
		return err
	}
	defer c.release()

	if err := c.exchange(ctx, "connect", nil); err != nil {
		return fmt.Errorf("connect %s: %w", c.endpoint, err)
	}
	c.log.Info().Str("session", c.Session()).Msg("connected")
	return nil
}

// send posts one batch of outbound messages.
func (c *Channel) send(ctx context.Context, batch []json.RawMessage) error {
	ok, err := c.acquire(slotSend)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSaturated
	}
	defer c.release()
	return c.exchange(ctx, "send", batch)
}

// pollIfIdle issues an empty long poll, but only when nothing else is in
// flight. It reports whether it polled.
func (c *Channel) pollIfIdle(ctx context.Context) (bool, error) {
	ok, err := c.acquire(slotPoll)
	if err != nil || !ok {
		return false, err
	}
	defer c.release()

	if err := c.limiter.Wait(ctx); err != nil {
		return true, err
	}
	return true, c.exchange(ctx, "poll", nil)
}

// drainOutbound takes everything queued right now, or nil.
func (c *Channel) drainOutbound() []json.RawMessage {
	var batch []json.RawMessage
	for {
		select {
		case msg := <-c.outbound:
			batch = append(batch, msg)
		default:
			return batch
		}
	}
}

// awaitOutbound blocks until a message is queued.
func (c *Channel) awaitOutbound(ctx context.Context) ([]json.RawMessage, error) {
	select {
	case msg := <-c.outbound:
		return []json.RawMessage{msg}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.stop:
		return nil, ErrClosed
	}
}

// exchange posts one frame and forwards the response's messages.
func (c *Channel) exchange(ctx context.Context, kind string, batch []json.RawMessage) error {
	body, err := wire.EncodeFrame(c.Session(), batch)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	c.log.Trace().Str("kind", kind).RawJSON("frame", body).Msg("post")

	start := time.Now()
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, body)
	})
	c.metrics.RequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Op: "post", Err: err}
		}
		c.record(kind, "", err)
		return err
	}

	frame, err := wire.DecodeFrame(data)
	if err != nil {
		c.record(kind, "", err)
		return err
	}
	c.log.Trace().Str("kind", kind).Bytes("frame", data).Msg("received")

	c.setSession(frame.Session)
	c.record(kind, frame.Session, nil)

	for _, msg := range frame.Messages {
		select {
		case c.inbound <- msg:
			c.metrics.InboundMessages.Inc()
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return ErrClosed
		}
	}
	return nil
}

func (c *Channel) post(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "post", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: "post", Err: fmt.Errorf("server returned status %d", resp.StatusCode)}
	}
	return data, nil
}

func (c *Channel) record(kind, session string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		result = "canceled"
	case errors.Is(err, wire.ErrMalformedResponse):
		result = "malformed"
	default:
		result = "error"
	}
	c.metrics.Requests.WithLabelValues(kind, result).Inc()

	if c.health != nil && result != "canceled" {
		c.health.RecordExchange(session, err)
	}
}

// report publishes err on Errors without blocking.
func (c *Channel) report(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

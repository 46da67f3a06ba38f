package client

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dsprenkels/maruska/internal/media"
	"github.com/dsprenkels/maruska/internal/protocol"
)

// ErrProtocolViolation reports a server message that breaks the protocol contract.
var ErrProtocolViolation = errors.New("protocol violation")

// Outbox accepts outbound protocol messages.
type Outbox interface {
	Enqueue(msg any) error
}

// LoginState is the position in the login state machine.
type LoginState int

const (
	NoToken LoginState = iota
	TokenRequested
	TokenReady
	LoggingIn
	LoggedIn
)

func (s LoginState) String() string {
	switch s {
	case NoToken:
		return "no token"
	case TokenRequested:
		return "token requested"
	case TokenReady:
		return "token ready"
	case LoggingIn:
		return "logging in"
	case LoggedIn:
		return "logged in"
	default:
		return fmt.Sprintf("LoginState(%d)", int(s))
	}
}

// PlaybackResult tells the caller what happened to a playback request.
type PlaybackResult int

const (
	// Sent means the request went out immediately.
	Sent PlaybackResult = iota
	// Deferred means the request waits for a successful login.
	Deferred
)

func (r PlaybackResult) String() string {
	if r == Deferred {
		return "deferred"
	}
	return "sent"
}

// PendingLogin is a login requested before a login token was available.
type PendingLogin struct {
	Username       string
	Secret         string
	UsingAccessKey bool
}

// Client is the protocol state machine.
type Client struct {
	out Outbox
	log zerolog.Logger

	playing  *media.Playing
	requests []media.Request

	loginState LoginState
	loginToken string
	accessKey  string
	pending    *PendingLogin
	deferred   []any

	search searchState
}

// New returns a Client that sends through out.
func New(out Outbox, logger zerolog.Logger) *Client {
	return &Client{out: out, log: logger}
}

// HandleMessage decodes one inbound message, applies it and returns the
// decoded variant so the caller can react to it. Unknown message kinds come
// back as protocol.Unknown with an error matching protocol.ErrUnknownMessageKind
// and leave the state untouched.
func (c *Client) HandleMessage(raw []byte) (protocol.Inbound, error) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		return msg, err
	}

	switch m := msg.(type) {
	case protocol.Welcome:
		c.log.Debug().Msg("welcome")
	case protocol.PlayingUpdate:
		c.playing = m.Playing
	case protocol.RequestsUpdate:
		c.requests = m.Requests
	case protocol.LoginToken:
		err = c.handleLoginToken(m)
	case protocol.LoggedIn:
		err = c.handleLoggedIn(m)
	case protocol.LoginError:
		c.handleLoginError(m)
	case protocol.QueryMediaResults:
		err = c.handleQueryMediaResults(m)
	}
	return msg, err
}

// Follow subscribes to the given topics. Passing a topic other than
// "playing" or "requests" is a programming error and panics.
func (c *Client) Follow(topics ...string) error {
	for _, topic := range topics {
		if !protocol.ValidTopic(topic) {
			panic(fmt.Sprintf("client: cannot follow unknown topic %q", topic))
		}
	}
	return c.send(protocol.NewFollow(topics))
}

// FollowAll subscribes to every topic.
func (c *Client) FollowAll() error {
	return c.Follow(protocol.Topics...)
}

// RequestPlayback asks the server to queue the media with the given key.
// Before login the request is held back and Deferred is returned.
func (c *Client) RequestPlayback(mediaKey string) (PlaybackResult, error) {
	msg := protocol.NewRequestMedia(mediaKey)
	if c.loginState == LoggedIn {
		return Sent, c.send(msg)
	}
	c.deferred = append(c.deferred, msg)
	c.log.Debug().Str("media", mediaKey).Int("deferred", len(c.deferred)).Msg("request deferred until login")
	return Deferred, nil
}

// RequestMedia is RequestPlayback for a decoded media entry.
func (c *Client) RequestMedia(m media.Media) (PlaybackResult, error) {
	return c.RequestPlayback(m.Key)
}

// Playing returns what is playing, or nil.
func (c *Client) Playing() *media.Playing {
	return c.playing
}

// Requests returns the current request queue.
func (c *Client) Requests() []media.Request {
	return c.requests
}

// DeferredCount is the number of messages waiting for login.
func (c *Client) DeferredCount() int {
	return len(c.deferred)
}

func (c *Client) send(msg any) error {
	if err := c.out.Enqueue(msg); err != nil {
		return fmt.Errorf("enqueue %T: %w", msg, err)
	}
	return nil
}

// MD5Hex returns the lowercase hex md5 digest of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func cloneResults(results []media.Media) []media.Media {
	return slices.Clone(results)
}

package protocol

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/dsprenkels/maruska/internal/media"
	"github.com/dsprenkels/maruska/internal/wire"
)

// Inbound message types.
const (
	TypeWelcome           = "welcome"
	TypePlaying           = "playing"
	TypeRequests          = "requests"
	TypeLoginToken        = "login_token"
	TypeLoggedIn          = "logged_in"
	TypeLoginError        = "error_login"
	TypeQueryMediaResults = "query_media_results"
)

// ErrUnknownMessageKind matches every *UnknownKindError.
var ErrUnknownMessageKind = errors.New("unknown message kind")

// UnknownKindError reports an inbound message whose type is not recognised.
type UnknownKindError struct {
	Type string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown message kind %q", e.Type)
}

func (e *UnknownKindError) Unwrap() error { return ErrUnknownMessageKind }

// Inbound is implemented by every decoded server message.
type Inbound interface {
	Kind() string
}

type (
	// Welcome is sent once per session.
	Welcome struct{}

	// PlayingUpdate replaces the now-playing state. Playing is nil when
	// nothing is playing.
	PlayingUpdate struct {
		Playing *media.Playing
	}

	// RequestsUpdate replaces the request queue.
	RequestsUpdate struct {
		Requests []media.Request
	}

	// LoginToken carries the one-time nonce used to salt the login hash.
	LoginToken struct {
		Token string
	}

	// LoggedIn confirms a login and hands out the persistent access key.
	LoggedIn struct {
		AccessKey string
	}

	// LoginError carries the server's reason for rejecting a login.
	LoginError struct {
		Message string
	}

	// QueryMediaResults answers the query_media request tagged with Token.
	QueryMediaResults struct {
		Token   uint64
		Results []media.Media
	}

	// Unknown keeps a message of an unrecognised type.
	Unknown struct {
		Type string
		Raw  json.RawMessage
	}
)

func (Welcome) Kind() string           { return TypeWelcome }
func (PlayingUpdate) Kind() string     { return TypePlaying }
func (RequestsUpdate) Kind() string    { return TypeRequests }
func (LoginToken) Kind() string        { return TypeLoginToken }
func (LoggedIn) Kind() string          { return TypeLoggedIn }
func (LoginError) Kind() string        { return TypeLoginError }
func (QueryMediaResults) Kind() string { return TypeQueryMediaResults }
func (u Unknown) Kind() string         { return u.Type }

// Decode turns one raw inbound message into its variant.
func Decode(raw []byte) (Inbound, error) {
	kind, err := wire.MessageType(raw)
	if err != nil {
		return nil, err
	}

	switch kind {
	case TypeWelcome:
		return Welcome{}, nil

	case TypePlaying:
		var body struct {
			Playing *media.Playing `json:"playing"`
		}
		if err := unmarshal(raw, &body, "playing"); err != nil {
			return nil, err
		}
		return PlayingUpdate{Playing: body.Playing}, nil

	case TypeRequests:
		var body struct {
			Requests *[]media.Request `json:"requests"`
		}
		if err := unmarshal(raw, &body, "requests"); err != nil {
			return nil, err
		}
		if body.Requests == nil {
			return nil, wire.Malformed("requests", raw)
		}
		return RequestsUpdate{Requests: *body.Requests}, nil

	case TypeLoginToken:
		var body struct {
			Token *string `json:"login_token"`
		}
		if err := unmarshal(raw, &body, "login_token"); err != nil || body.Token == nil {
			return nil, wire.Malformed("login_token", raw)
		}
		return LoginToken{Token: *body.Token}, nil

	case TypeLoggedIn:
		var body struct {
			AccessKey *string `json:"accessKey"`
		}
		if err := unmarshal(raw, &body, "accessKey"); err != nil || body.AccessKey == nil {
			return nil, wire.Malformed("accessKey", raw)
		}
		return LoggedIn{AccessKey: *body.AccessKey}, nil

	case TypeLoginError:
		var body struct {
			Message *string `json:"message"`
		}
		if err := unmarshal(raw, &body, "message"); err != nil || body.Message == nil {
			return nil, wire.Malformed("message", raw)
		}
		return LoginError{Message: *body.Message}, nil

	case TypeQueryMediaResults:
		var body struct {
			Token   *uint64        `json:"token"`
			Results *[]media.Media `json:"results"`
		}
		if err := unmarshal(raw, &body, "results"); err != nil {
			return nil, err
		}
		if body.Token == nil {
			return nil, wire.Malformed("token", raw)
		}
		if body.Results == nil {
			return nil, wire.Malformed("results", raw)
		}
		return QueryMediaResults{Token: *body.Token, Results: *body.Results}, nil
	}

	return Unknown{Type: kind, Raw: append(json.RawMessage(nil), raw...)}, &UnknownKindError{Type: kind}
}

// unmarshal decodes raw into v, keeping the innermost malformed field when a
// nested value object rejects its payload.
func unmarshal(raw []byte, v any, field string) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var mr *wire.MalformedResponseError
		if errors.As(err, &mr) {
			return mr
		}
		return wire.Malformed(field, raw)
	}
	return nil
}

package wire

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Frame is a decoded response body.
type Frame struct {
	Session  string
	Messages []json.RawMessage
}

// EncodeFrame renders an outbound request body. The session id is omitted
// while it is still empty.
func EncodeFrame(session string, msgs []json.RawMessage) ([]byte, error) {
	elems := make([]json.RawMessage, 0, len(msgs)+1)
	if session != "" {
		sid, err := json.Marshal(session)
		if err != nil {
			return nil, err
		}
		elems = append(elems, sid)
	}
	elems = append(elems, msgs...)
	return json.Marshal(elems)
}

// DecodeFrame parses a response body of the form [session, [messages...]].
// Elements after the message array are ignored.
func DecodeFrame(body []byte) (Frame, error) {
	var elems []json.RawMessage
	if !startsWith(body, '[') {
		return Frame{}, Malformed("frame", body)
	}
	if err := json.Unmarshal(body, &elems); err != nil {
		return Frame{}, Malformed("frame", body)
	}

	if len(elems) < 1 || !startsWith(elems[0], '"') {
		return Frame{}, Malformed("session id", body)
	}
	var session string
	if err := json.Unmarshal(elems[0], &session); err != nil || session == "" {
		return Frame{}, Malformed("session id", body)
	}

	if len(elems) < 2 || !startsWith(elems[1], '[') {
		return Frame{}, Malformed("messages", body)
	}
	var msgs []json.RawMessage
	if err := json.Unmarshal(elems[1], &msgs); err != nil {
		return Frame{}, Malformed("messages", body)
	}

	return Frame{Session: session, Messages: msgs}, nil
}

// MessageType returns the required "type" field of a message object.
func MessageType(raw []byte) (string, error) {
	if !startsWith(raw, '{') {
		return "", Malformed("type", raw)
	}
	var envelope struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Type == nil {
		return "", Malformed("type", raw)
	}
	return *envelope.Type, nil
}

func startsWith(raw []byte, c byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == c
}

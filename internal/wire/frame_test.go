package wire

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
)

func TestEncodeFrame_OmitsEmptySession(t *testing.T) {
	got, err := EncodeFrame("", nil)
	if err != nil {
		t.Fatalf("EncodeFrame returned error: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("EncodeFrame = %s, want []", got)
	}

	msgs := []json.RawMessage{
		json.RawMessage(`{"type":"follow","which":["playing"]}`),
		json.RawMessage(`{"type":"request_login_token"}`),
	}
	got, err = EncodeFrame("", msgs)
	if err != nil {
		t.Fatalf("EncodeFrame returned error: %v", err)
	}
	want := `[{"type":"follow","which":["playing"]},{"type":"request_login_token"}]`
	if string(got) != want {
		t.Fatalf("EncodeFrame = %s, want %s", got, want)
	}
}

func TestEncodeFrame_PrefixesSession(t *testing.T) {
	got, err := EncodeFrame("s1", []json.RawMessage{json.RawMessage(`{"type":"welcome"}`)})
	if err != nil {
		t.Fatalf("EncodeFrame returned error: %v", err)
	}
	if string(got) != `["s1",{"type":"welcome"}]` {
		t.Fatalf("EncodeFrame = %s", got)
	}
}

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte(`["s1",[{"type":"welcome"},{"type":"playing"}]]`))
	if err != nil {
		t.Fatalf("DecodeFrame returned error: %v", err)
	}
	if frame.Session != "s1" {
		t.Fatalf("Session = %q, want s1", frame.Session)
	}
	if len(frame.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(frame.Messages))
	}
	kind, err := MessageType(frame.Messages[1])
	if err != nil || kind != "playing" {
		t.Fatalf("MessageType = %q, %v; want playing", kind, err)
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `<html>`, "frame"},
		{"object", `{"session":"s1"}`, "frame"},
		{"empty array", `[]`, "session id"},
		{"numeric session", `[1,[]]`, "session id"},
		{"empty session", `["",[]]`, "session id"},
		{"missing messages", `["s1"]`, "messages"},
		{"messages not array", `["s1",{"type":"welcome"}]`, "messages"},
		{"null messages", `["s1",null]`, "messages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.body))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("err = %v, want ErrMalformedResponse", err)
			}
			var mr *MalformedResponseError
			if !errors.As(err, &mr) {
				t.Fatalf("err = %T, want *MalformedResponseError", err)
			}
			if mr.Field != tt.field {
				t.Fatalf("Field = %q, want %q", mr.Field, tt.field)
			}
			if string(mr.Raw) != tt.body {
				t.Fatalf("Raw = %q, want %q", mr.Raw, tt.body)
			}
		})
	}
}

func TestMessageType_Missing(t *testing.T) {
	for _, raw := range []string{`{}`, `{"type":null}`, `[]`, `"welcome"`} {
		if _, err := MessageType([]byte(raw)); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("MessageType(%s) err = %v, want ErrMalformedResponse", raw, err)
		}
	}
}

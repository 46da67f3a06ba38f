package ui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArg  string
		wantOK   bool
	}{
		{line: ":", wantOK: false},
		{line: ":   ", wantOK: false},
		{line: ":quit", wantName: "quit", wantOK: true},
		{line: ":username alice", wantName: "username", wantArg: "alice", wantOK: true},
		{line: ":password  two words ", wantName: "password", wantArg: "two words", wantOK: true},
	}
	for _, tt := range tests {
		name, arg, ok := parseCommand(tt.line)
		if name != tt.wantName || arg != tt.wantArg || ok != tt.wantOK {
			t.Errorf("parseCommand(%q) = %q, %q, %v; want %q, %q, %v",
				tt.line, name, arg, ok, tt.wantName, tt.wantArg, tt.wantOK)
		}
	}
}

func TestMaskPassword(t *testing.T) {
	tests := map[string]string{
		":password hunter2": ":password *******",
		":password ":        ":password ",
		":password":         ":password",
		":username hunter2": ":username hunter2",
		"/password hunter2": "/password hunter2",
	}
	for in, want := range tests {
		if got := maskPassword(in); got != want {
			t.Errorf("maskPassword(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeleteWord(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"/":             "",
		"/foo":          "/",
		"/foo bar":      "/foo ",
		"/foo bar  ":    "/foo ",
		":username bob": ":username ",
	}
	for in, want := range tests {
		if got := deleteWord(in); got != want {
			t.Errorf("deleteWord(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeleteLine(t *testing.T) {
	tests := map[string]string{
		"":          "",
		":":         "",
		"/beatles":  "/",
		":password": ":",
	}
	for in, want := range tests {
		if got := deleteLine(in); got != want {
			t.Errorf("deleteLine(%q) = %q, want %q", in, got, want)
		}
	}
}

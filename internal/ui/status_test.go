package ui

import (
	"strings"
	"testing"
	"time"
)

func TestStatusExpires(t *testing.T) {
	start := time.Unix(1000, 0)
	s := status{text: "Logging in", kind: statusInfo, at: start}

	if !s.visible(start.Add(4 * time.Second)) {
		t.Fatalf("status hidden before TTL")
	}
	if s.visible(start.Add(statusTTL)) {
		t.Fatalf("status visible after TTL")
	}
	if (status{}).visible(start) {
		t.Fatalf("empty status visible")
	}
}

func TestStatusWidth(t *testing.T) {
	now := time.Unix(1000, 0)
	tests := []struct {
		text string
		want int
	}{
		{text: "ok", want: minStatusWidth},
		{text: strings.Repeat("x", 45), want: 45},
		{text: strings.Repeat("x", 90), want: maxStatusWidth},
	}
	for _, tt := range tests {
		s := status{text: tt.text, at: now}
		if got := s.width(now); got != tt.want {
			t.Errorf("width(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
	expired := status{text: "gone", at: now.Add(-time.Minute)}
	if got := expired.width(now); got != 0 {
		t.Fatalf("expired width = %d, want 0", got)
	}
}

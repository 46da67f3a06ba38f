package ui

import (
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	statusTTL      = 5 * time.Second
	minStatusWidth = 30
	maxStatusWidth = 60
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// status is the one-line message at the bottom right. It disappears after
// statusTTL or as soon as the user types.
type status struct {
	text string
	kind statusKind
	at   time.Time
}

func (s status) visible(now time.Time) bool {
	return s.text != "" && now.Sub(s.at) < statusTTL
}

// width is the column budget the status takes from the prompt line.
func (s status) width(now time.Time) int {
	if !s.visible(now) {
		return 0
	}
	return min(max(minStatusWidth, runewidth.StringWidth(s.text)), maxStatusWidth)
}

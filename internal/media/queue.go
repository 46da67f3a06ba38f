package media

import (
	"fmt"
	"time"
)

// QueueLength returns how long until the last request finishes: the time
// left on the playing track plus the length of every queued request.
func QueueLength(playing *Playing, requests []Request, now time.Time) time.Duration {
	var total time.Duration
	if playing != nil {
		total += playing.Remaining(now)
	}
	for _, r := range requests {
		total += r.Media.Length
	}
	return total
}

// FormatDuration renders d as m:ss, h:mm:ss or Nd hh:mm:ss.
func FormatDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	hours := secs / 3600 % 24
	minutes := secs / 60 % 60
	seconds := secs % 60

	var out string
	switch {
	case days != 0:
		out = fmt.Sprintf("%dd%02d:%02d:%02d", days, hours, minutes, seconds)
	case hours != 0:
		out = fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	default:
		out = fmt.Sprintf("%d:%02d", minutes, seconds)
	}
	if neg {
		return "-" + out
	}
	return out
}

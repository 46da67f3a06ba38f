// Package media holds the value objects the queue server sends: library
// entries, the currently playing track and queued requests.
package media

import (
	"errors"
	"math"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dsprenkels/maruska/internal/wire"
)

// DefaultRequester is shown for tracks nobody requested.
const DefaultRequester = "marietje"

// Media is a single library entry.
type Media struct {
	Key           string
	Artist        string
	Title         string
	Length        time.Duration
	UploadedByKey string
}

type rawMedia struct {
	Key           *string  `json:"key"`
	Artist        *string  `json:"artist"`
	Title         *string  `json:"title"`
	Length        *float64 `json:"length"`
	UploadedByKey *string  `json:"uploadedByKey"`
}

// UnmarshalJSON decodes a media object. Every field is required; the length
// is numeric seconds and any fraction is truncated to nanoseconds.
func (m *Media) UnmarshalJSON(data []byte) error {
	var raw rawMedia
	if err := json.Unmarshal(data, &raw); err != nil {
		return wire.Malformed("media", data)
	}
	switch {
	case raw.Key == nil:
		return wire.Malformed("key", data)
	case raw.Artist == nil:
		return wire.Malformed("artist", data)
	case raw.Title == nil:
		return wire.Malformed("title", data)
	case raw.Length == nil:
		return wire.Malformed("length", data)
	case raw.UploadedByKey == nil:
		return wire.Malformed("uploadedByKey", data)
	}
	*m = Media{
		Key:           *raw.Key,
		Artist:        *raw.Artist,
		Title:         *raw.Title,
		Length:        secondsToDuration(*raw.Length),
		UploadedByKey: *raw.UploadedByKey,
	}
	return nil
}

// Playing describes the track the server is playing right now. EndTime and
// ServerTime are epoch seconds on the server's clock.
type Playing struct {
	ByKey      *string
	EndTime    float64
	Media      Media
	ServerTime float64
}

type rawPlaying struct {
	ByKey      *string  `json:"byKey"`
	EndTime    *float64 `json:"endTime"`
	Media      *Media   `json:"media"`
	ServerTime *float64 `json:"serverTime"`
}

// UnmarshalJSON decodes a playing object. Missing or non-finite times decode as zero.
func (p *Playing) UnmarshalJSON(data []byte) error {
	var raw rawPlaying
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformedOr(err, "playing", data)
	}
	if raw.Media == nil {
		return wire.Malformed("media", data)
	}
	*p = Playing{
		ByKey:      raw.ByKey,
		EndTime:    finite(raw.EndTime),
		Media:      *raw.Media,
		ServerTime: finite(raw.ServerTime),
	}
	return nil
}

// CorrectedEndTime shifts the server's end time onto the local clock:
// endTime + (now - serverTime).
func (p Playing) CorrectedEndTime(now time.Time) time.Time {
	skew := epochSeconds(now) - p.ServerTime
	corrected := p.EndTime + skew
	if math.IsNaN(corrected) || math.IsInf(corrected, 0) {
		corrected = 0
	}
	return epochToTime(corrected)
}

// Remaining is the time left on the current track, never negative.
func (p Playing) Remaining(now time.Time) time.Duration {
	left := p.CorrectedEndTime(now).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// RequestedBy returns the requester or DefaultRequester.
func (p Playing) RequestedBy() string {
	return requester(p.ByKey)
}

// Request is one entry of the request queue.
type Request struct {
	ByKey *string
	Key   int64
	Media Media
}

type rawRequest struct {
	ByKey *string `json:"byKey"`
	Key   *int64  `json:"key"`
	Media *Media  `json:"media"`
}

// UnmarshalJSON decodes a request object.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw rawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return malformedOr(err, "request", data)
	}
	switch {
	case raw.Key == nil:
		return wire.Malformed("key", data)
	case raw.Media == nil:
		return wire.Malformed("media", data)
	}
	*r = Request{ByKey: raw.ByKey, Key: *raw.Key, Media: *raw.Media}
	return nil
}

// RequestedBy returns the requester or DefaultRequester.
func (r Request) RequestedBy() string {
	return requester(r.ByKey)
}

func requester(byKey *string) string {
	if byKey == nil || *byKey == "" {
		return DefaultRequester
	}
	return *byKey
}

func secondsToDuration(secs float64) time.Duration {
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0
	}
	if secs >= math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	whole, frac := math.Modf(secs)
	return time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))
}

func finite(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func epochToTime(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}

// malformedOr keeps a nested *MalformedResponseError so the innermost
// missing field is reported.
func malformedOr(err error, field string, data []byte) error {
	var mr *wire.MalformedResponseError
	if errors.As(err, &mr) {
		return mr
	}
	return wire.Malformed(field, data)
}

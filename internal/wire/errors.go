package wire

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse matches every *MalformedResponseError.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError reports a payload that does not have the expected shape.
type MalformedResponseError struct {
	Field string
	Raw   []byte
}

// Malformed builds a *MalformedResponseError for field in raw.
func Malformed(field string, raw []byte) error {
	return &MalformedResponseError{Field: field, Raw: raw}
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: missing or invalid %s in %s", e.Field, preview(e.Raw))
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

const maxPreview = 200

func preview(raw []byte) string {
	if len(raw) <= maxPreview {
		return string(raw)
	}
	return string(raw[:maxPreview]) + "..."
}

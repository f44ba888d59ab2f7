package model

import (
	"strconv"
	"strings"
)

// TriState is a flag that is true, false, or explicitly unknown.
// sslscan encodes these flags as text ("1", "0", "true", "false") and omits
// them when the check did not run, so the zero value is TriStateUnknown.
type TriState int8

const (
	// TriStateUnknown means the flag was not reported.
	TriStateUnknown TriState = iota

	// TriStateTrue means the flag was reported as set.
	TriStateTrue

	// TriStateFalse means the flag was reported as not set.
	TriStateFalse
)

// ParseTriState converts sslscan flag text into a TriState.
// Anything that strconv.ParseBool rejects, including empty text, is unknown.
func ParseTriState(s string) TriState {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return TriStateUnknown
	}
	if b {
		return TriStateTrue
	}
	return TriStateFalse
}

// IsTrue reports whether the flag is known to be set.
func (t TriState) IsTrue() bool {
	return t == TriStateTrue
}

// IsKnown reports whether the flag was reported at all.
func (t TriState) IsKnown() bool {
	return t == TriStateTrue || t == TriStateFalse
}

// String returns "yes", "no" or "unknown".
func (t TriState) String() string {
	switch t {
	case TriStateTrue:
		return "yes"
	case TriStateFalse:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TriState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// It accepts the String form as well as any ParseTriState input.
func (t *TriState) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "yes":
		*t = TriStateTrue
	case "no":
		*t = TriStateFalse
	default:
		*t = ParseTriState(string(text))
	}
	return nil
}

package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEntry is returned when a scan entry lacks host, sniname or
	// port, or when its port is not a number. The entry is skipped.
	ErrMalformedEntry = errors.New("malformed scan entry")

	// ErrEmptyDocument is returned when a document has no scan entries.
	ErrEmptyDocument = errors.New("document contains no scan entries")

	// ErrDateParse is returned when a certificate date does not match the
	// sslscan timestamp layout. The date is left null.
	ErrDateParse = errors.New("invalid certificate date")

	// ErrCipherBits is returned when a cipher's bits attribute is not a
	// number. The cipher is dropped.
	ErrCipherBits = errors.New("invalid cipher bits")
)

// Warning kinds reported in model.Warning.Kind.
const (
	KindMalformedEntry = "malformed_entry"
	KindDateParse      = "date_parse"
	KindCipherBits     = "cipher_bits"
	KindOther          = "other"
)

// EntryError ties a recoverable problem to the scan entry it came from.
type EntryError struct {
	// Index is the 0-based position of the entry in the document.
	Index int

	// Host is the entry's host attribute, if it had one.
	Host string

	// Err is the underlying problem.
	Err error
}

// Error implements error.
func (e *EntryError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("entry %d (%s): %v", e.Index, e.Host, e.Err)
}

// Unwrap returns the underlying error.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// Kind classifies the warning for reports.
func (e *EntryError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrMalformedEntry):
		return KindMalformedEntry
	case errors.Is(e.Err, ErrDateParse):
		return KindDateParse
	case errors.Is(e.Err, ErrCipherBits):
		return KindCipherBits
	default:
		return KindOther
	}
}

// DateError describes a certificate date that could not be parsed.
type DateError struct {
	// Field is the element the date came from, e.g. "not-valid-before".
	Field string

	// Value is the raw text.
	Value string

	// Err is the parse error from the time package.
	Err error
}

// Error implements error.
func (e *DateError) Error() string {
	return fmt.Sprintf("%v: %s %q", ErrDateParse, e.Field, e.Value)
}

// Unwrap returns ErrDateParse and the time package error.
func (e *DateError) Unwrap() []error {
	return []error{ErrDateParse, e.Err}
}

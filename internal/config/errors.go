package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no sslscan XML file is given.
	ErrNoInput = errors.New("no input specified: provide at least one sslscan XML file or '-' for stdin")

	// ErrStdinRepeated is returned when "-" appears more than once in the inputs.
	ErrStdinRepeated = errors.New("stdin ('-') can only be read once")

	// ErrInvalidFormat is returned when the output format is not supported.
	ErrInvalidFormat = errors.New("invalid output format: must be one of csv, json, markdown, text")

	// ErrInvalidConcurrency is returned when the entry concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the file batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidDateFormat is returned when the date format is not a valid
	// strftime pattern.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidMinCipherBits is returned when the cipher threshold is negative.
	ErrInvalidMinCipherBits = errors.New("invalid minimum cipher bits: must be non-negative")

	// ErrInvalidMaxValidityDays is returned when the validity threshold is negative.
	ErrInvalidMaxValidityDays = errors.New("invalid maximum validity days: must be non-negative")
)

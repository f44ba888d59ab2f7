// Package log builds the slog loggers used by sslreport.
//
// Log output goes to stderr so that reports written to stdout stay clean.
// The default level is Warn; verbose mode lowers it to Debug.
//
// # Counting warnings
//
// CountingHandler wraps any slog.Handler and counts records at Warn level
// or above. The convert command uses the count to implement --strict:
//
//	counter := log.NewCountingHandler(slog.NewTextHandler(os.Stderr, nil))
//	logger := slog.New(counter)
//	// ... run the conversion with logger ...
//	if counter.Count() > 0 {
//	    return errStrict
//	}
//
// Warnings are counted even if the wrapped handler would drop them.
//
// # Log files
//
// OpenFile returns a size-rotated file (gopkg.in/natefinch/lumberjack.v2)
// and Tee copies stderr output into it, so long batch runs keep a record of
// skipped entries.
package log

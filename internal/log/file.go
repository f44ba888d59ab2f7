package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation limits.
const (
	// MaxLogFileSizeMB is the size at which the log file is rotated.
	MaxLogFileSizeMB = 10

	// MaxLogFileBackups is the number of rotated files kept.
	MaxLogFileBackups = 3

	// MaxLogFileAgeDays is how long rotated files are kept.
	MaxLogFileAgeDays = 28
)

// OpenFile returns a size-rotated log file writer for path.
// The parent directory is created if needed.
func OpenFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxLogFileSizeMB,
		MaxBackups: MaxLogFileBackups,
		MaxAge:     MaxLogFileAgeDays,
	}, nil
}

// Tee returns w, or a writer that also copies to file when file is not nil.
func Tee(w io.Writer, file io.Writer) io.Writer {
	if file == nil {
		return w
	}
	return io.MultiWriter(w, file)
}

// Package build provides the process-wide logging infrastructure shared by
// every subsystem of the hub: a rotating log file writer and per-subsystem
// slog.Logger handles that can be swapped in once the root logger is ready.
package build

import (
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate"
)

// LogWriter wraps a rotating log file and stdout so that every subsystem
// logger writes to both without knowing about either.
type LogWriter struct {
	r *logrotate.Rotator
}

// NewLogWriter creates a LogWriter rotating the given file path. Pass an
// empty path to log to stdout only.
func NewLogWriter(path string) (*LogWriter, error) {
	if path == "" {
		return &LogWriter{}, nil
	}
	r, err := logrotate.NewRotator(path)
	if err != nil {
		return nil, err
	}
	return &LogWriter{r: r}, nil
}

// Write implements io.Writer, duplicating every write to stdout and, if
// configured, to the rotating log file.
func (w *LogWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if w.r != nil {
		return w.r.Write(b)
	}
	return len(b), nil
}

// Close releases the underlying rotator, if any.
func (w *LogWriter) Close() error {
	if w.r == nil {
		return nil
	}
	return w.r.Close()
}

// Backend is the shared slog backend every subsystem logger is derived
// from. It is nil until InitLogRotator runs; subsystem loggers created
// before that point are no-ops until SetupLoggers replaces them.
var backend *slog.Backend

// InitLogRotator creates the on-disk log writer and the shared backend.
// Must be called once during startup before SetupLoggers.
func InitLogRotator(path string) error {
	w, err := NewLogWriter(path)
	if err != nil {
		return err
	}
	backend = slog.NewBackend(w)
	return nil
}

// NewSubLogger returns a logger for the given subsystem tag, backed by the
// shared rotating writer once InitLogRotator has run, or a disabled logger
// otherwise.
func NewSubLogger(subsystem string) slog.Logger {
	if backend == nil {
		return slog.Disabled
	}
	l := backend.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

// SetLogLevels sets the logging level on every registered subsystem logger.
func SetLogLevels(loggers map[string]slog.Logger, level slog.Level) {
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

package logger

import (
	"io"
	"log"
	"log/slog"
	"moviecatalog/proj/internal/lib/logger/handlers/slogpretty"
	"os"
	"strings"
)

func SetupLogger(debug bool) *slog.Logger {
	return New(os.Stdout, debug)
}

func New(w io.Writer, debug bool) *slog.Logger {
	var handler slog.Handler
	if debug {
		handler = slogpretty.NewPrettyHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type out struct {
	stdLog *slog.Logger
}

func (l out) Write(p []byte) (n int, err error) {
	l.stdLog.Warn(strings.TrimSpace(string(p)))
	return len(p), nil
}

// LogAdapter lets http.Server report its own errors through slog.
func LogAdapter(logger *slog.Logger) *log.Logger {
	return log.New(&out{logger}, "", 0)
}

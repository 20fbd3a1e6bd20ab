package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joacominatel/minasql/internal/config"
)

// Setup installs the default slog logger: a text handler on stderr at the
// configured level plus, when a log file is configured, a debug-level
// handler appending to it. Every record carries the run id.
// The returned closer releases the log file.
func Setup(cfg config.Log, stderr io.Writer) (io.Closer, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}),
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		logFile, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		closer = logFile

		handlers = append(handlers, slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug, AddSource: true,
		}))
	}

	logger := slog.New(NewMultiHandler(handlers...)).With("run", uuid.NewString())
	slog.SetDefault(logger)

	return closer, nil
}

// ParseLevel maps a level name onto slog. Unknown names mean warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package Logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the process-wide logger. It is usable before Init and writes to stderr until then.
var L = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init replaces L with a JSON logger at the given level and makes it the slog default.
func Init(levelStr string) *slog.Logger {
	return InitWithWriter(levelStr, os.Stdout)
}

func InitWithWriter(levelStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	invalid := false
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		invalid = true
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	if invalid {
		L.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", levelStr)
	}
	L.Info("Logger initialized", "level", level.String())
	return L
}

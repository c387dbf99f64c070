package logger

import (
	"io"
	"log/slog"
	"strings"

	"catalog-api/internal/util"
)

const redacted = "[REDACTED]"

// New builds the process logger. format is "json" or "pretty"; unknown
// levels fall back to info. Attributes named like password fields are
// masked in both formats.
func New(w io.Writer, level string, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: maskSensitive,
	}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(NewPrettyHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func maskSensitive(_ []string, a slog.Attr) slog.Attr {
	if util.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}

package logger

import (
	"log/slog"
	"strings"
)

// Field names of a log line.
const (
	KeyTimestamp = "timestamp"
	KeyLevel     = "level"
	KeyMessage   = "message"
	KeyService   = "service"
	KeyHostname  = "hostname"
	KeyRequestID = "request_id"
	KeyAction    = "action"
	KeyDetails   = "details"
	KeyError     = "error"
)

// ParseLevel maps debug, info, warn and error; anything else is info.
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

func renameBuiltins(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = KeyTimestamp
		a.Value = slog.StringValue(a.Value.Time().UTC().Format("2006-01-02T15:04:05.000000000Z07:00"))
	case slog.LevelKey:
		a.Key = KeyLevel
	case slog.MessageKey:
		a.Key = KeyMessage
	}
	return a
}

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type jsonLogger struct {
	log *slog.Logger
}

// New writes JSON lines to stdout.
func New(service, level string) Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) Logger {
	hostname, _ := os.Hostname()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: renameBuiltins,
	})
	return &jsonLogger{
		log: slog.New(handler).With(
			slog.String(KeyService, service),
			slog.String(KeyHostname, hostname),
		),
	}
}

// Discard drops everything; handy in tests.
func Discard() Logger {
	return NewWithWriter(io.Discard, "test", "error")
}

func (l *jsonLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.write(slog.LevelInfo, action, message, requestID, details, nil)
}

func (l *jsonLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.write(slog.LevelDebug, action, message, requestID, details, nil)
}

func (l *jsonLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	l.write(slog.LevelError, action, message, requestID, details, err)
}

func (l *jsonLogger) write(level slog.Level, action, message, requestID string, details map[string]interface{}, err error) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{slog.String(KeyAction, action)}
	if requestID != "" {
		attrs = append(attrs, slog.String(KeyRequestID, requestID))
	}
	if len(details) > 0 {
		attrs = append(attrs, slog.Any(KeyDetails, details))
	}
	if err != nil {
		attrs = append(attrs, slog.Group(KeyError, slog.String("msg", err.Error())))
	}
	l.log.LogAttrs(ctx, level, message, attrs...)
}

package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

type implLogger struct {
	logger zerolog.Logger
}

// New creates a new Logger writing to stdout
func New(level, format string) Logger {
	return NewWriter(os.Stdout, level, format)
}

// NewWriter creates a Logger on w. format "text" selects the human readable
// console output, anything else writes JSON lines.
func NewWriter(w io.Writer, level, format string) Logger {
	out := w
	if strings.EqualFold(format, FormatText) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return &implLogger{
		logger: zerolog.New(out).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger(),
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &implLogger{logger: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.entry(ctx, l.logger.Debug()).Msgf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.entry(ctx, l.logger.Info()).Msgf(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.entry(ctx, l.logger.Warn()).Msgf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.entry(ctx, l.logger.Error()).Msgf(msg, args...)
}

func (l *implLogger) With(key string, value interface{}) Logger {
	return &implLogger{logger: l.logger.With().Interface(key, value).Logger()}
}

// entry attaches the request id set by the HTTP middleware, if any.
func (l *implLogger) entry(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if ctx == nil {
		return e
	}
	if rid := middleware.GetReqID(ctx); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e
}

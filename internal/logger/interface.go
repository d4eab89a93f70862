package logger

import "context"

// Logger is the logging contract shared by every package.
// Messages use fmt-style formatting.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})

	// With returns a child logger that adds key=value to every entry.
	With(key string, value interface{}) Logger
}

package watcher

import "context"

// Watcher monitors a directory and hands matching new files to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one new file. It runs on its own goroutine.
type EventHandler func(ctx context.Context, filePath string) error

// Matcher decides whether a file should be handled.
type Matcher func(path string) bool

package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
)

const (
	defaultMaxConcurrent = 2
	// settleInterval is how long a file's size must stay unchanged before it is handled.
	settleInterval = 500 * time.Millisecond
	settleAttempts = 20
)

// Options configures a Watcher.
type Options struct {
	Dir           string
	Match         Matcher
	Handler       EventHandler
	MaxConcurrent int
}

// New creates a new Watcher instance with concurrency control
func New(opts Options, log logger.Logger) (Watcher, error) {
	if opts.Handler == nil {
		return nil, fmt.Errorf("watcher: handler is required")
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(opts.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}

	return &implWatcher{
		inputDir:      opts.Dir,
		match:         opts.Match,
		handler:       opts.Handler,
		logger:        log,
		watcher:       watcher,
		maxConcurrent: opts.MaxConcurrent,
		semaphore:     make(chan struct{}, opts.MaxConcurrent),
		settle:        settleInterval,
		inFlight:      make(map[string]bool),
	}, nil
}

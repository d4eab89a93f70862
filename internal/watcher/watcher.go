package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
)

type implWatcher struct {
	inputDir      string
	match         Matcher
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settle        time.Duration
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// Start monitors the input directory until ctx is done, then waits for
// running handlers.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			if !w.match(event.Name) {
				w.logger.Debug(ctx, "Ignoring file: %s", event.Name)
				continue
			}
			if !w.claim(event.Name) {
				continue
			}
			w.logger.Info(ctx, "New file detected: %s", event.Name)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go w.handle(ctx, event.Name)
			case <-ctx.Done():
				w.unclaim(event.Name)
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handle(ctx context.Context, path string) {
	defer w.wg.Done()
	defer func() { <-w.semaphore }()
	defer w.unclaim(path)

	if err := w.waitStable(ctx, path); err != nil {
		w.logger.Warn(ctx, "Skipping %s: %v", path, err)
		return
	}
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
	}
}

// waitStable returns once the file size stops changing between two polls.
func (w *implWatcher) waitStable(ctx context.Context, path string) error {
	last := int64(-1)
	for i := 0; i < settleAttempts; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == last && info.Size() > 0 {
			return nil
		}
		last = info.Size()

		select {
		case <-time.After(w.settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("file is still being written")
}

// claim marks path as being handled so duplicate events are ignored.
func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[path] {
		return false
	}
	w.inFlight[path] = true
	return true
}

func (w *implWatcher) unclaim(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

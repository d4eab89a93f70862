package job

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/media-flow/internal/logger"
)

// workspace owns a job's scratch directory.
type workspace struct {
	dir       string
	removeAll func(path string) error
	once      sync.Once
}

// release removes the scratch directory. Only the first call does anything,
// and a failure is logged rather than changing the job outcome.
func (w *workspace) release(ctx context.Context, log logger.Logger) {
	w.once.Do(func() {
		if w.dir == "" {
			return
		}
		if err := w.removeAll(w.dir); err != nil {
			log.Warn(ctx, "Failed to cleanup scratch dir %s: %v", w.dir, err)
			return
		}
		log.Debug(ctx, "Cleaned up scratch dir: %s", w.dir)
	})
}

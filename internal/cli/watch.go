package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/storage"
	"github.com/nguyentantai21042004/media-flow/internal/watcher"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Summarize every caption file dropped into the inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return watch(cmd.Context(), a)
		},
	}
}

func watch(ctx context.Context, a *app) error {
	inbox := a.cfg.Paths.Inbox

	w, err := watcher.New(watcher.Options{
		Dir:           inbox,
		Match:         job.IsCaptionFile,
		Handler:       a.summarizeInbox,
		MaxConcurrent: a.cfg.Performance.MaxConcurrent,
	}, a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	a.banner(ctx, "Media Flow inbox watcher")
	a.logger.Info(ctx, "Drop .vtt or .srt files into %s. Press Ctrl+C to stop", inbox)

	select {
	case <-sigChan:
		a.logger.Info(ctx, "Shutdown signal received")
		cancel()
		<-errChan
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error(ctx, "Watcher error: %v", err)
			return err
		}
	}

	a.logger.Info(ctx, "Watcher stopped")
	return nil
}

// summarizeInbox runs a summarize job for one inbox file, then files it
// under processed/ or failed/.
func (a *app) summarizeInbox(ctx context.Context, path string) error {
	j, err := a.jobs.Start(ctx, job.Request{Kind: job.KindSummarize, File: path})
	if err != nil {
		return err
	}

	log := a.logger.With("job_id", j.ID())
	var last job.Event
	for ev := range j.Events() {
		last = ev
		log.Debug(ctx, "%s %.1f%% %s", ev.Phase, ev.Progress, ev.Details)
	}

	dest := processedDir
	if j.Err() != nil {
		dest = failedDir
	}
	if moved, err := archive(path, filepath.Join(filepath.Dir(path), dest)); err != nil {
		log.Warn(ctx, "Failed to move %s to %s: %v", path, dest, err)
	} else {
		log.Info(ctx, "Moved %s to %s", filepath.Base(path), moved)
	}

	if err := j.Err(); err != nil {
		return fmt.Errorf("%s", last.Details)
	}
	for _, e := range last.Result.Exports {
		log.Info(ctx, "Summary written: %s", e)
	}
	return nil
}

// archive moves path into dir without overwriting an earlier file of the same name.
func archive(path, dir string) (string, error) {
	ext := filepath.Ext(path)
	base := filepath.Base(path)
	dst, err := storage.ReservePath(dir, base[:len(base)-len(ext)], ext)
	if err != nil {
		return "", err
	}
	if err := os.Rename(path, dst); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}

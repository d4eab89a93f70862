package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/progress"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// step is one tool invocation. build runs right before the step starts, so
// it can use what earlier steps produced.
type step struct {
	name  string
	label string
	build func() (executor.Command, progress.Parser, error)
	track func(st progress.State)
	after func(st progress.State) error
	// abort undoes what build reserved when the step does not succeed.
	abort func()

	// streams is how many media streams each item writes, 0 meaning one.
	streams int
}

// plan is the work of one job: sequential steps sharing the first span
// percent of the progress range, then an optional finalize.
type plan struct {
	steps    []step
	span     float64
	finalize func(ctx context.Context) (*Result, error)
}

// run drives one job to its terminal event.
func (m *implManager) run(ctx context.Context, j *Job) {
	log := m.logger.With("job_id", j.id)
	start := m.now()

	res, err := m.execute(ctx, j, log)
	m.forget(j.id)
	last := j.finish(res, err)
	j.cancel()

	if last.Result == nil {
		log.Error(ctx, "Job %s failed after %s: %s", j.id, m.now().Sub(start).Round(time.Millisecond), last.Error)
		return
	}
	log.Info(ctx, "Job %s completed in %s (%s)", j.id, m.now().Sub(start).Round(time.Millisecond), last.Result.OutputPath)
}

// execute walks Idle -> Preparing -> Running -> Finalizing. The workspace is
// released before it returns, so cleanup always precedes the terminal event.
func (m *implManager) execute(ctx context.Context, j *Job, log logger.Logger) (res *Result, err error) {
	ws := &workspace{removeAll: m.removeAll}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, stageError(string(j.State()), "Internal error", fmt.Errorf("panic: %v", r))
		}
		ws.release(ctx, log)
		if err != nil && ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
			err = stageError(string(j.State()), "Job cancelled", fmt.Errorf("%w: %w", ErrCancelled, err))
		}
	}()

	if err := m.queue(ctx, j); err != nil {
		return nil, err
	}
	defer m.sem.release()

	if err := j.transition(StatePreparing); err != nil {
		return nil, stageError(string(StateIdle), "Internal error", err)
	}
	j.emit(ctx, progress.Event{Phase: progress.PhasePreparing, Details: "Preparing " + string(j.req.Kind)})

	p, err := m.prepare(ctx, j, ws, log)
	if err != nil {
		return nil, err
	}

	if err := j.transition(StateRunning); err != nil {
		return nil, stageError(string(StatePreparing), "Internal error", err)
	}
	for i, s := range p.steps {
		if ctx.Err() != nil {
			return nil, stageError(s.name, "Job cancelled", ErrCancelled)
		}
		if err := m.runStep(ctx, j, log, s, i, len(p.steps), p.span); err != nil {
			return nil, err
		}
	}

	if err := j.transition(StateFinalizing); err != nil {
		return nil, stageError(string(StateRunning), "Internal error", err)
	}
	if p.finalize == nil {
		return &Result{}, nil
	}
	return p.finalize(ctx)
}

// queue waits for a run slot, telling the caller when it has to wait.
func (m *implManager) queue(ctx context.Context, j *Job) error {
	if m.sem.tryAcquire() {
		return nil
	}

	j.emit(ctx, progress.Event{Phase: progress.PhaseQueued, Details: "Waiting for a free slot"})
	if err := m.sem.acquire(ctx); err != nil {
		return stageError(string(StateIdle), "Job cancelled", fmt.Errorf("%w: %w", ErrCancelled, err))
	}
	return nil
}

func (m *implManager) runStep(ctx context.Context, j *Job, log logger.Logger, s step, idx, n int, span float64) (err error) {
	if s.abort != nil {
		defer func() {
			if err != nil {
				s.abort()
			}
		}()
	}

	cmd, parser, err := s.build()
	if err != nil {
		return stageError(s.name, "Could not prepare "+s.name, err)
	}
	log.Debug(ctx, "Running %s %s", cmd.Path, strings.Join(cmd.Args, " "))

	proc, err := m.executor.Stream(ctx, cmd)
	if err != nil {
		return stageError(s.name, "Could not start "+s.name, err)
	}

	var st progress.State
	lines := proc.Lines()
loop:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			log.Debug(ctx, "[%s] %s", s.name, line)

			var ev *progress.Event
			st, ev = parser.Classify(st, line)
			if s.track != nil {
				s.track(st)
			}
			if ev != nil {
				if s.label != "" && ev.Details != "" {
					ev.Details = s.label + ": " + ev.Details
				}
				ev.Progress = streamPercent(st, *ev, s.streams)
				j.emit(ctx, scale(*ev, idx, n, span))
			}
		case <-ctx.Done():
			break loop
		}
	}

	waitErr := proc.Wait()
	if ctx.Err() != nil {
		return stageError(s.name, "Job cancelled", ErrCancelled)
	}
	if waitErr != nil {
		return stageError(s.name, s.name+" failed", waitErr)
	}
	if s.after != nil {
		if err := s.after(st); err != nil {
			return stageError(s.name, err.Error(), err)
		}
	}
	return nil
}

// streamPercent turns a parser percentage into the item's own percentage.
// A stream that just started counts from zero. The streams of a merged item
// share the range below the post-processing watermark, so the merge that
// follows them never reports less than the downloads did.
func streamPercent(st progress.State, ev progress.Event, streams int) float64 {
	if ev.Phase != progress.PhaseDownloading {
		return ev.Progress
	}
	pct := ev.Progress
	if st.Starting() {
		pct = 0
	}
	if streams <= 1 {
		return pct
	}
	k := min(max(st.Stream, 1), streams)
	return (float64(k-1)*100 + pct) * progress.PostProcessingPercent / float64(100*streams)
}

// scale maps a step-local percentage into the step's slice of the job's range.
// Items of a playlist each own an equal share of their step.
func scale(ev progress.Event, idx, n int, span float64) progress.Event {
	local := ev.Progress
	if ev.VideoTotal > 1 && ev.VideoIndex >= 1 {
		local = (float64(ev.VideoIndex-1)*100 + local) / float64(ev.VideoTotal)
	}
	ev.Progress = (float64(idx)*100 + local) / float64(n) * span / 100
	return ev
}

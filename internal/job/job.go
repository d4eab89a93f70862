package job

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/progress"
)

// Job is the handle of one running job.
type Job struct {
	id        string
	req       Request
	createdAt time.Time
	now       func() time.Time
	cancel    context.CancelFunc

	events chan Event
	done   chan struct{}

	mu    sync.RWMutex
	state State
	last  progress.Event
	seq   int64
	err   error
}

func newJob(id string, req Request, now func() time.Time, cancel context.CancelFunc) *Job {
	return &Job{
		id:        id,
		req:       req,
		createdAt: now(),
		now:       now,
		cancel:    cancel,
		events:    make(chan Event),
		done:      make(chan struct{}),
		state:     StateIdle,
	}
}

func (j *Job) ID() string {
	return j.id
}

func (j *Job) Request() Request {
	return j.req
}

// Events delivers the job's events in order. The last one is terminal and
// the channel is closed right after it.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Done is closed once the terminal event has been delivered.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel stops the job. The running tool is killed and cleanup still runs.
func (j *Job) Cancel() {
	j.cancel()
}

// Err returns the failure of a finished job, or nil.
func (j *Job) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.err
}

func (j *Job) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

func (j *Job) Snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Snapshot{
		ID:        j.id,
		Kind:      j.req.Kind,
		Source:    j.req.Source(),
		State:     j.state,
		Progress:  j.last,
		CreatedAt: j.createdAt,
	}
}

func (j *Job) transition(to State) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !isValidTransition(j.state, to) {
		return transitionError(j.state, to)
	}
	j.state = to
	return nil
}

// emit sends a non-terminal event. Progress never goes below what was
// already reported. Once ctx is done pending progress is dropped, since the
// caller asked to stop and only the terminal event still matters.
func (j *Job) emit(ctx context.Context, ev progress.Event) {
	if ctx.Err() != nil {
		return
	}

	j.mu.Lock()
	ev.Progress = math.Round(ev.Progress*10) / 10
	if ev.Progress < j.last.Progress {
		ev.Progress = j.last.Progress
	}
	if ev.Progress > 100 {
		ev.Progress = 100
	}
	j.last = ev
	j.seq++
	out := Event{Event: ev, Seq: j.seq, JobID: j.id, Timestamp: j.now()}
	j.mu.Unlock()

	select {
	case j.events <- out:
	case <-ctx.Done():
	}
}

// finish moves the job to its terminal state and delivers the terminal
// event. It blocks until the event is received, then closes the stream.
func (j *Job) finish(res *Result, err error) Event {
	j.mu.Lock()
	if err == nil && !isValidTransition(j.state, StateCompleted) {
		err = stageError(string(j.state), "Job ended unexpectedly", transitionError(j.state, StateCompleted))
	}

	j.seq++
	out := Event{Seq: j.seq, JobID: j.id, Timestamp: j.now()}
	if err != nil {
		j.state = StateFailed
		out.Event = progress.Event{Phase: progress.PhaseError, Progress: 0, Details: describe(err)}
		out.Error = err.Error()
	} else {
		j.state = StateCompleted
		if res == nil {
			res = &Result{}
		}
		out.Event = progress.Event{Phase: progress.PhaseCompleted, Progress: 100, Details: "Done"}
		out.Result = res
	}
	j.last = out.Event
	j.err = err
	j.mu.Unlock()

	j.events <- out
	close(j.events)
	close(j.done)
	return out
}

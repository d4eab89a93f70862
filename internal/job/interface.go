package job

import "context"

// Manager starts jobs and tracks the ones still running.
type Manager interface {
	// Start validates req and launches the job. The job runs until it
	// finishes or ctx is cancelled. The caller must drain Events.
	Start(ctx context.Context, req Request) (*Job, error)
	Get(id string) (*Job, bool)
	Cancel(id string) error
	List() []Snapshot
}

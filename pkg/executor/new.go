package executor

import "time"

const (
	// stderrTailBytes bounds how much stderr is kept for error reporting.
	stderrTailBytes = 4096
	// maxLineBytes bounds a single stdout line.
	maxLineBytes = 1024 * 1024
	// waitDelay is how long Wait waits for pipes after the process is killed.
	waitDelay = 5 * time.Second
)

type implExecutor struct {
	tailBytes int
}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{
		tailBytes: stderrTailBytes,
	}
}

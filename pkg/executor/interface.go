package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	// Resolve returns the absolute path of an executable or an *ExecutableNotFoundError.
	Resolve(name string) (string, error)

	// Execute runs a command to completion and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// Stream starts a command and exposes its stdout as a line stream.
	Stream(ctx context.Context, cmd Command) (Process, error)
}

// Command describes one invocation of an external tool.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// Process is a started command.
//
// Lines must be drained until it is closed, or the context passed to Stream
// is cancelled, before calling Wait.
type Process interface {
	Lines() <-chan string
	Wait() error
}

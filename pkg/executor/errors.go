package executor

import (
	"fmt"
	"strings"
)

// ExecutableNotFoundError is returned when a tool cannot be located before spawn.
type ExecutableNotFoundError struct {
	Path string
	Err  error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable not found: %s", e.Path)
}

func (e *ExecutableNotFoundError) Unwrap() error {
	return e.Err
}

// ToolError reports a non-zero exit, a spawn failure or a signal.
// ExitCode is -1 when the process never produced one.
type ToolError struct {
	Command    string
	ExitCode   int
	StderrTail string
	Err        error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("command '%s' failed (exit=%d)", e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if tail := strings.TrimSpace(e.StderrTail); tail != "" {
		msg += "\nstderr: " + tail
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// LastLine returns the last non-empty stderr line, which is usually the tool's own error message.
func (e *ToolError) LastLine() string {
	lines := strings.Split(strings.TrimSpace(e.StderrTail), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

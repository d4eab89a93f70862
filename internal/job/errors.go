package job

import (
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrTranscriptTooShort = errors.New("transcript too short")
	ErrConfiguration      = errors.New("summarization is not configured")
	ErrSummarization      = errors.New("summarization failed")
	ErrCancelled          = errors.New("job cancelled")
	ErrNotFound           = errors.New("job not found")
)

// StageError records the lifecycle state and step a job failed in.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func stageError(stage, message string, err error) error {
	return &StageError{Stage: stage, Message: message, Err: err}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// describe renders a failure as the one-line message shown to the caller.
func describe(err error) string {
	var (
		notFound *executor.ExecutableNotFoundError
		toolErr  *executor.ToolError
		stage    *StageError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "Job cancelled"
	case errors.As(err, &notFound):
		return fmt.Sprintf("Executable not found: %s. Install it or fix the tools section of the config", notFound.Path)
	case errors.As(err, &toolErr):
		msg := fmt.Sprintf("%s failed (exit %d)", toolErr.Command, toolErr.ExitCode)
		if last := toolErr.LastLine(); last != "" {
			msg += ": " + last
		}
		return msg
	case errors.As(err, &stage):
		return stage.Message
	default:
		return err.Error()
	}
}

package job

import "fmt"

// State is a job's position in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StatePreparing  State = "preparing"
	StateRunning    State = "running"
	StateFinalizing State = "finalizing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// IsTerminal reports whether the state is final.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StatePreparing || to == StateFailed
	case StatePreparing:
		return to == StateRunning || to == StateFailed
	case StateRunning:
		return to == StateFinalizing || to == StateFailed
	case StateFinalizing:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}

func transitionError(from, to State) error {
	return fmt.Errorf("invalid transition: %s -> %s", from, to)
}

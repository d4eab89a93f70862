package progress

// Phase is the display label carried by every event.
type Phase string

const (
	PhaseQueued      Phase = "queued"
	PhasePreparing   Phase = "preparing"
	PhaseDownloading Phase = "downloading"
	PhaseProcessing  Phase = "processing"
	PhaseExtracting  Phase = "extracting"
	PhaseSummarizing Phase = "summarizing"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// IsTerminal reports whether no event may follow one in this phase.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseError
}

// Event is one progress update. Values are never mutated after being returned.
type Event struct {
	Phase      Phase   `json:"status"`
	Progress   float64 `json:"progress"`
	Details    string  `json:"details"`
	VideoIndex int     `json:"videoIndex,omitempty"`
	VideoTotal int     `json:"videoTotal,omitempty"`
}

// State is the parser state threaded through Classify calls.
// The zero value is the state before the first line of a job.
type State struct {
	Percent float64
	Index   int
	Total   int
	Item    string
	Rate    string
	// Stream counts the streams started within the current item. A merged
	// download writes a video stream and then an audio stream.
	Stream  int

	// resetPending lets the next percentage start below Percent because a
	// new item or stream began.
	resetPending bool
}

// Starting reports whether a new item or stream began and no percentage
// has been seen for it yet. Percent still holds the previous stream's value.
func (st State) Starting() bool {
	return st.resetPending
}

// Parser classifies one output line of a tool.
//
// Classify is pure: it returns the next state and at most one event and
// never keeps anything between calls, so one Parser can serve many jobs.
type Parser interface {
	Classify(st State, line string) (State, *Event)
}

package loader

import "time"

// Phase represents the load lifecycle of the open document
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOpening
	PhaseStreaming
	PhaseReady
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "Opening"
	case PhaseStreaming:
		return "Loading chunks"
	case PhaseReady:
		return "Ready"
	default:
		return ""
	}
}

// SessionState holds the current session state
type SessionState struct {
	Phase        Phase
	StartTime    time.Time
	Name         string
	Rows         int
	Cols         int
	ChunksLoaded int
	CellsLoaded  int
	Dirty        bool
}

// IsLoading returns true while chunk fetches are outstanding
func (s SessionState) IsLoading() bool {
	return s.Phase == PhaseOpening || s.Phase == PhaseStreaming
}

// Elapsed returns time since the document was opened
func (s SessionState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}

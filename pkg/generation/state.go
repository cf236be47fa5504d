package generation

import "github.com/aretw0/bpmngen/pkg/domain"

// State is the orchestrator lifecycle state.
type State int

const (
	// StateIdle means nothing has been requested yet, or the last request was abandoned.
	StateIdle State = iota
	// StateRequesting means a compilation is in flight; new requests are rejected.
	StateRequesting
	// StateSucceeded means the latest request produced a diagram.
	StateSucceeded
	// StateFailed means the latest request failed with a classified error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of the orchestrator state.
type Snapshot struct {
	State State
	// Token is the latest issued request token.
	Token uint64
	// Diagram is the last successful result. It survives later failures so it
	// can still be exported.
	Diagram *domain.Diagram
	// Err is the classified error of the latest request when State is StateFailed.
	Err error
}

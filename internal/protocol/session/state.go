package session

// State is the session's position in the call state machine.
type State int

const (
	StateUninitialized State = iota
	StateAwaitingFirstFeedback
	StateReady
	StateAwaitingOutcome
	StateFaulted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingFirstFeedback:
		return "awaiting_first_feedback"
	case StateReady:
		return "ready"
	case StateAwaitingOutcome:
		return "awaiting_outcome"
	case StateFaulted:
		return "faulted"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

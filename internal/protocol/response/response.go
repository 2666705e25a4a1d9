package response

import (
	"fmt"

	"github.com/danmuck/coqctl/internal/protocol"
)

const (
	TagFeedback        = "feedback"
	TagValue           = "value"
	TagFeedbackContent = "feedback_content"

	AttrObject = "object"
	AttrRoute  = "route"
	AttrLocS   = "loc_s"
	AttrLocE   = "loc_e"
)

// Status is the outcome discriminant carried in value[val].
type Status string

const (
	StatusGood Status = "good"
	StatusFail Status = "fail"
)

// Response is either a Feedback or an Outcome.
type Response interface {
	isResponse()
}

// Feedback is an asynchronous notification about a state.
type Feedback struct {
	StateID protocol.StateID
	Object  string
	Route   string
	// Content is the val of the feedback_content child, if any.
	Content string
}

// Outcome terminates a call. Good outcomes carry Data, failed ones carry Error.
type Outcome struct {
	Status Status
	Data   protocol.Value
	Error  *ErrorInfo
}

// Span is a character range into the submitted source.
type Span struct {
	Start int
	End   int
}

// ErrorInfo describes a failed call.
type ErrorInfo struct {
	Message string
	Span    *Span
	// SafeStateID is the state the worker still considers valid, when reported.
	SafeStateID protocol.StateID
}

func (Feedback) isResponse() {}
func (Outcome) isResponse()  {}

func (o Outcome) Good() bool {
	return o.Status == StatusGood
}

func (e ErrorInfo) String() string {
	if e.Span == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (chars %d-%d)", e.Message, e.Span.Start, e.Span.End)
}

// FirstOutcome returns the first outcome in rs.
func FirstOutcome(rs []Response) (Outcome, bool) {
	for _, r := range rs {
		if o, ok := r.(Outcome); ok {
			return o, true
		}
	}
	return Outcome{}, false
}

// HasOutcome is the read predicate for a pending call.
func HasOutcome(rs []Response) bool {
	_, ok := FirstOutcome(rs)
	return ok
}

// StartsWithFeedback is the read predicate used while waiting for the worker to come up.
func StartsWithFeedback(rs []Response) bool {
	if len(rs) == 0 {
		return false
	}
	_, ok := rs[0].(Feedback)
	return ok
}

// Feedbacks returns the feedback messages of rs in order.
func Feedbacks(rs []Response) []Feedback {
	var out []Feedback
	for _, r := range rs {
		if fb, ok := r.(Feedback); ok {
			out = append(out, fb)
		}
	}
	return out
}

package enhance

import "github.com/jonathan/premium-reader/internal/types"

// EventKind distinguishes stream events.
type EventKind int

// Stream event kinds
const (
	EventInsight EventKind = iota
	EventError
	EventDone
)

// Event is one element of an enhancement stream.
type Event struct {
	Kind    EventKind
	Insight types.InsightResult // set for EventInsight
	Err     string              // set for EventError
}

type errorPayload struct {
	Error string `json:"error"`
}

type donePayload struct {
	Done bool `json:"done"`
}

// Payload returns the JSON body sent to stream consumers:
// the InsightResult, {"error": msg} or {"done": true}.
func (e Event) Payload() any {
	switch e.Kind {
	case EventError:
		return errorPayload{Error: e.Err}
	case EventDone:
		return donePayload{Done: true}
	default:
		return e.Insight
	}
}

package graphrepo

import "fmt"

// State identifies a step of the persistence state machine. Transitions run
// Start → AddressesFromSaved → AddressesToSaved → RelationsSaved → Done,
// with Failed reachable from any state.
type State string

const (
	StateStart              State = "START"
	StateAddressesFromSaved State = "ADDRESSES_FROM_SAVED"
	StateAddressesToSaved   State = "ADDRESSES_TO_SAVED"
	StateRelationsSaved     State = "RELATIONS_SAVED"
	StateDone               State = "DONE"
	StateFailed             State = "FAILED"
)

// Status is one state-machine transition, emitted to the caller as the
// persistence pass progresses. Err is set only for StateFailed.
type Status struct {
	State     State
	Direction string
	Message   string
	Err       error
}

// StatusFunc consumes status transitions. Callers render these however they
// like (log lines, progress UI); a nil StatusFunc is allowed.
type StatusFunc func(Status)

var stateMessages = map[State]string{
	StateStart:              "Start post logs",
	StateAddressesFromSaved: "Saved Address From",
	StateAddressesToSaved:   "Saved Address To",
	StateRelationsSaved:     "Saved Relation",
	StateDone:               "Finish post logs",
	StateFailed:             "Failed post logs",
}

func newStatus(state State, direction string, err error) Status {
	return Status{
		State:     state,
		Direction: direction,
		Message:   fmt.Sprintf("[%s] %s", direction, stateMessages[state]),
		Err:       err,
	}
}

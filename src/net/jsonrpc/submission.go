package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// SubmissionState is the state of an atom submission as reported by a node.
type SubmissionState int

const (
	// Received is the only non terminal state.
	Received SubmissionState = iota
	Stored
	Collision
	IllegalState
	UnsuitablePeer
	ValidationError
	UnknownError
	// Failed is produced locally when the submission could not be carried
	// out because of a transport or protocol error.
	Failed
)

var submissionStateNames = map[SubmissionState]string{
	Received:        "RECEIVED",
	Stored:          "STORED",
	Collision:       "COLLISION",
	IllegalState:    "ILLEGAL_STATE",
	UnsuitablePeer:  "UNSUITABLE_PEER",
	ValidationError: "VALIDATION_ERROR",
	UnknownError:    "UNKNOWN_ERROR",
	Failed:          "FAILED",
}

func (s SubmissionState) String() string {
	if name, ok := submissionStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SubmissionState(%d)", int(s))
}

// IsTerminal reports whether no update follows s.
func (s SubmissionState) IsTerminal() bool {
	return s != Received
}

// ParseSubmissionState converts the value of an AtomSubmissionState.onNext
// notification. Failed is never sent by a node.
func ParseSubmissionState(value string) (SubmissionState, error) {
	for s, name := range submissionStateNames {
		if s != Failed && name == value {
			return s, nil
		}
	}
	return UnknownError, fmt.Errorf("unknown submission state %q", value)
}

// SubmissionUpdate is one step of a submission.
type SubmissionUpdate struct {
	State SubmissionState
	Data  json.RawMessage
	// Err is set for Failed updates.
	Err error
}

// NewFailedUpdate ...
func NewFailedUpdate(err error) SubmissionUpdate {
	return SubmissionUpdate{
		State: Failed,
		Err:   err,
	}
}

func (u SubmissionUpdate) String() string {
	if u.Err != nil {
		return fmt.Sprintf("%s(%v)", u.State, u.Err)
	}
	return u.State.String()
}

package onboarding

import (
	"errors"
	"fmt"
)

type Event string

const (
	EventVerifyEmail     Event = "verify_email"
	EventSubmitDetails   Event = "submit_details"
	EventUploadDocuments Event = "upload_documents"
	EventVerifyDocuments Event = "verify_documents"
	EventApprove         Event = "approve"
	EventReject          Event = "reject"
	EventSuspend         Event = "suspend"
	EventReinstate       Event = "reinstate"
)

// ErrAlreadyApplied is returned for idempotent events whose effect is already
// reflected in the current state. Callers report success without writing.
var ErrAlreadyApplied = errors.New("transition already applied")

// TransitionError describes a rejected (state, event) pair.
type TransitionError struct {
	From    State
	Event   Event
	Message string
}

func (e *TransitionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cannot %s vendor in state %s", e.Event, e.From)
}

type rule struct {
	from []State
	to   State
	// idempotent events return ErrAlreadyApplied when the current state is at
	// or past the target on the happy path.
	idempotent bool
	// blocked overrides the default message for specific source states.
	blocked map[State]string
}

var rules = map[Event]rule{
	EventVerifyEmail: {
		from:       []State{StateRegistered},
		to:         StateEmailVerified,
		idempotent: true,
	},
	EventSubmitDetails: {
		from:       []State{StateEmailVerified},
		to:         StateDetailsSubmitted,
		idempotent: true,
		blocked: map[State]string{
			StateRegistered: "Please verify your email before submitting business details",
		},
	},
	EventUploadDocuments: {
		from:       []State{StateDetailsSubmitted},
		to:         StateUnderReview,
		idempotent: true,
		blocked: map[State]string{
			StateRegistered:    "Please complete business details before uploading documents",
			StateEmailVerified: "Please complete business details before uploading documents",
		},
	},
	EventVerifyDocuments: {
		from: []State{StateUnderReview},
		to:   StateDocumentsVerified,
	},
	EventApprove: {
		from: []State{StateUnderReview, StateDocumentsVerified},
		to:   StateApproved,
		blocked: map[State]string{
			StateApproved:  "Vendor already approved",
			StateSuspended: "Vendor already approved",
			StateRejected:  "Vendor application was rejected",
		},
	},
	EventReject: {
		from: []State{StateUnderReview, StateDocumentsVerified},
		to:   StateRejected,
		blocked: map[State]string{
			StateRejected: "Vendor already rejected",
			StateApproved: "Vendor already approved",
		},
	},
	EventSuspend: {
		from: []State{StateApproved},
		to:   StateSuspended,
		blocked: map[State]string{
			StateSuspended: "Vendor already suspended",
		},
	},
	EventReinstate: {
		from: []State{StateSuspended},
		to:   StateApproved,
	},
}

// Transition is the single place deciding whether an event may be applied to
// a state and what the resulting state is.
func Transition(current State, event Event) (State, error) {
	r, ok := rules[event]
	if !ok {
		return current, fmt.Errorf("unknown onboarding event %q", event)
	}

	for _, from := range r.from {
		if from == current {
			return r.to, nil
		}
	}

	if r.idempotent && current.rank() >= r.to.rank() && current.rank() > 0 {
		return current, ErrAlreadyApplied
	}

	msg := r.blocked[current]
	if msg == "" && r.idempotent && current.rank() > 0 && current.rank() < r.to.rank() {
		msg = fmt.Sprintf("Registration step out of order: cannot %s from %s", event, current)
	}
	return current, &TransitionError{From: current, Event: event, Message: msg}
}

// IsTransitionError reports whether err is a rejected transition.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

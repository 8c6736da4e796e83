// Package onboarding models the vendor application lifecycle as an explicit
// state machine. Handlers never write registration_step or
// verification_status directly; they ask Transition for the next state and
// persist what it returns.
package onboarding

import (
	"fmt"

	"evea/internal/domain"
)

type State int

const (
	StateUnknown State = iota
	StateRegistered
	StateEmailVerified
	StateDetailsSubmitted
	StateUnderReview
	StateDocumentsVerified
	StateApproved
	StateRejected
	StateSuspended
)

var stateNames = map[State]string{
	StateUnknown:           "unknown",
	StateRegistered:        "registered",
	StateEmailVerified:     "email_verified",
	StateDetailsSubmitted:  "details_submitted",
	StateUnderReview:       "under_review",
	StateDocumentsVerified: "documents_verified",
	StateApproved:          "approved",
	StateRejected:          "rejected",
	StateSuspended:         "suspended",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// rank orders the happy path so idempotent events can tell "already done"
// from "not yet possible". Terminal off-path states have no rank.
func (s State) rank() int {
	switch s {
	case StateRegistered:
		return 1
	case StateEmailVerified:
		return 2
	case StateDetailsSubmitted:
		return 3
	case StateUnderReview:
		return 4
	case StateDocumentsVerified:
		return 5
	case StateApproved, StateSuspended:
		return 6
	}
	return 0
}

// Step is the registration_step persisted for the state. Zero means the
// state does not change the step (rejection keeps whatever step was reached).
func (s State) Step() int {
	switch s {
	case StateRegistered, StateEmailVerified:
		return domain.StepRegistered
	case StateDetailsSubmitted:
		return domain.StepDetailsSubmitted
	case StateUnderReview, StateDocumentsVerified:
		return domain.StepDocumentsUploaded
	case StateApproved, StateSuspended:
		return domain.StepApproved
	}
	return 0
}

// Status is the verification_status persisted for the state.
func (s State) Status() domain.VerificationStatus {
	switch s {
	case StateDocumentsVerified:
		return domain.VendorVerified
	case StateApproved:
		return domain.VendorApproved
	case StateRejected:
		return domain.VendorRejected
	case StateSuspended:
		return domain.VendorSuspended
	}
	return domain.VendorPending
}

// Derive reconstructs the state from the persisted columns.
func Derive(step int, status domain.VerificationStatus, emailVerified bool) State {
	switch status {
	case domain.VendorApproved:
		return StateApproved
	case domain.VendorRejected:
		return StateRejected
	case domain.VendorSuspended:
		return StateSuspended
	case domain.VendorVerified:
		return StateDocumentsVerified
	case domain.VendorPending:
		switch {
		case step >= domain.StepDocumentsUploaded:
			return StateUnderReview
		case step == domain.StepDetailsSubmitted:
			return StateDetailsSubmitted
		case step == domain.StepRegistered && emailVerified:
			return StateEmailVerified
		case step == domain.StepRegistered:
			return StateRegistered
		}
	}
	return StateUnknown
}

// Of derives the state of a vendor whose User has been loaded.
func Of(v *domain.Vendor) State {
	verified := v.User != nil && v.User.EmailVerified
	return Derive(v.RegistrationStep, v.VerificationStatus, verified)
}

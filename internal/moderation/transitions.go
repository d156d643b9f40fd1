package moderation

import "errors"

var (
	// ErrInvalidTransition indicates the requested status change is not allowed.
	ErrInvalidTransition = errors.New("invalid moderation transition")
	// ErrEmptyReason indicates a rejection was attempted without a reason.
	ErrEmptyReason = errors.New("rejection reason must not be empty")
)

// validTransitions contains the permitted status transitions.
var validTransitions = map[Status][]Status{
	StatusPending: {
		StatusApproved,
		StatusRejected,
	},
	StatusApproved: {
		StatusHeld,
	},
	StatusHeld: {
		StatusApproved,
	},
}

var transitionRecorder = func(entity, from, to string) {}

// RegisterTransitionRecorder allows external packages to observe status transitions.
func RegisterTransitionRecorder(recorder func(entity, from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string, string) {}
		return
	}

	transitionRecorder = recorder
}

// IsTransitionAllowed reports whether moving from one status to another is valid.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}

	return false
}

// Approve returns the status after an admin approval. Only pending
// entities can be approved.
func Approve(entity string, from Status) (Status, error) {
	if !IsTransitionAllowed(from, StatusApproved) || from != StatusPending {
		return from, ErrInvalidTransition
	}

	transitionRecorder(entity, string(from), string(StatusApproved))

	return StatusApproved, nil
}

// Reject returns the status after an admin rejection. Only pending
// entities can be rejected, and a trimmed non-empty reason is required;
// validation of the reason itself stays with the caller, this guard only
// refuses the transition when reason is empty.
func Reject(entity string, from Status, reason string) (Status, error) {
	if from != StatusPending {
		return from, ErrInvalidTransition
	}
	if reason == "" {
		return from, ErrEmptyReason
	}

	transitionRecorder(entity, string(from), string(StatusRejected))

	return StatusRejected, nil
}

// ToggleHold flips an entity between approved and held. Any other
// starting status is a transition error.
func ToggleHold(entity string, from Status) (Status, error) {
	var to Status
	switch from {
	case StatusApproved:
		to = StatusHeld
	case StatusHeld:
		to = StatusApproved
	default:
		return from, ErrInvalidTransition
	}

	transitionRecorder(entity, string(from), string(to))

	return to, nil
}

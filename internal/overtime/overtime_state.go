package overtime

import (
	overtimeerrors "cerven-ot/internal/overtime/errors"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	Level1 = 1
	Level2 = 2
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Phase is the pair of level statuses a request is in.
type Phase struct {
	Level1 string
	Level2 string
}

type move struct {
	level    int
	decision string
}

// Outcome is the phase after a move plus the final status it settles, if any.
type Outcome struct {
	Phase Phase
	Final string
}

var transitions = map[Phase]map[move]Outcome{
	{StatusPending, StatusPending}: {
		{Level1, StatusApproved}: {Phase: Phase{StatusApproved, StatusPending}},
		{Level1, StatusRejected}: {Phase: Phase{StatusRejected, StatusPending}, Final: StatusRejected},
	},
	{StatusApproved, StatusPending}: {
		{Level2, StatusApproved}: {Phase: Phase{StatusApproved, StatusApproved}, Final: StatusApproved},
		{Level2, StatusRejected}: {Phase: Phase{StatusApproved, StatusRejected}, Final: StatusRejected},
	},
}

// DecisionFor maps an API action to the status it records.
func DecisionFor(action string) (string, bool) {
	switch action {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Transition returns the outcome of deciding level with decision from phase.
// Illegal moves leave the request untouched.
func Transition(from Phase, level int, decision string) (Outcome, error) {
	if level != Level1 && level != Level2 {
		return Outcome{}, overtimeerrors.ErrInvalidLevel
	}
	if decision != StatusApproved && decision != StatusRejected {
		return Outcome{}, overtimeerrors.ErrInvalidAction
	}

	if out, ok := transitions[from][move{level, decision}]; ok {
		return out, nil
	}

	if level == Level2 && from.Level1 != StatusApproved {
		return Outcome{}, overtimeerrors.ErrLevel1Required
	}
	return Outcome{}, overtimeerrors.ErrAlreadyDecided
}

package claim

import "fmt"

// Action is a state-changing operation on a claim.
type Action string

const (
	ActionRequestIdentity  Action = "request_identity"
	ActionSubmitIdentity   Action = "submit_identity"
	ActionInitiateHandover Action = "initiate_handover"
	ActionConfirmHandover  Action = "confirm_handover"
	ActionReject           Action = "reject"
)

type edge struct {
	actor Role
	from  []Status
	to    Status
}

// transitions is the complete transition table. Creation is handled by CanCreate.
var transitions = map[Action]edge{
	ActionRequestIdentity: {
		actor: RoleFinder,
		from:  []Status{StatusActive, StatusIdentitySubmitted},
		to:    StatusIdentityRequested,
	},
	ActionSubmitIdentity: {
		actor: RoleClaimant,
		from:  []Status{StatusIdentityRequested},
		to:    StatusIdentitySubmitted,
	},
	ActionInitiateHandover: {
		actor: RoleFinder,
		from:  []Status{StatusIdentitySubmitted},
		to:    StatusHandoverInitiated,
	},
	ActionConfirmHandover: {
		actor: RoleClaimant,
		from:  []Status{StatusHandoverInitiated},
		to:    StatusReturned,
	},
	ActionReject: {
		actor: RoleFinder,
		from:  []Status{StatusActive, StatusIdentityRequested, StatusIdentitySubmitted, StatusHandoverInitiated},
		to:    StatusRejected,
	},
}

// Actor returns the only role allowed to perform the action.
func (a Action) Actor() Role {
	return transitions[a].actor
}

// Transition validates action against the current status and caller role
// and returns the resulting status.
//
// Checks run in a fixed order: not a party, wrong actor, terminal claim,
// wrong source state. A wrong actor is therefore Forbidden whatever the
// state, and a terminal claim is ClaimClosed for the legitimate actor.
func Transition(current Status, action Action, role Role) (Status, error) {
	e, ok := transitions[action]
	if !ok {
		return current, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if role == RoleNone {
		return current, ErrNotAParty
	}
	if role != e.actor {
		return current, fmt.Errorf("%w: %s requires the %s", ErrWrongActor, action, e.actor)
	}
	if current.IsTerminal() {
		return current, fmt.Errorf("%w: claim is %s", ErrClaimClosed, current)
	}
	for _, from := range e.from {
		if from == current {
			return e.to, nil
		}
	}
	switch action {
	case ActionSubmitIdentity:
		return current, ErrNotInRequestedState
	case ActionConfirmHandover:
		return current, ErrClaimNotReady
	}
	return current, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
}

// CreateContext carries everything CanCreate needs to know about the item
// and the claimant's existing claims.
type CreateContext struct {
	ItemExists        bool
	ItemRecovered     bool
	FinderID          int64
	ClaimantID        int64
	HasNonTerminalDup bool
}

// CanCreate evaluates the preconditions of claim creation.
func CanCreate(ctx CreateContext) error {
	if !ctx.ItemExists {
		return ErrItemNotFound
	}
	if ctx.ItemRecovered {
		return ErrItemAlreadyClaimed
	}
	if ctx.FinderID == ctx.ClaimantID {
		return ErrSelfClaimForbidden
	}
	if ctx.HasNonTerminalDup {
		return ErrDuplicateActiveClaim
	}
	return nil
}

// CanPostMessage allows free-text chat between the parties of an open claim.
func CanPostMessage(current Status, role Role) error {
	if role == RoleNone {
		return ErrNotAParty
	}
	if current.IsTerminal() {
		return fmt.Errorf("%w: this conversation is closed", ErrClaimClosed)
	}
	return nil
}

// CanIssueCode checks that the caller may start the handover code exchange.
// Only the finder issues a code; the claimant confirms receipt by entering it.
func CanIssueCode(current Status, role Role) error {
	if role == RoleNone {
		return ErrNotAParty
	}
	if role != RoleFinder {
		return fmt.Errorf("%w: only the finder issues a handover code", ErrWrongActor)
	}
	if current.IsTerminal() {
		return fmt.Errorf("%w: claim is %s", ErrClaimClosed, current)
	}
	if current != StatusHandoverInitiated {
		return ErrClaimNotReady
	}
	return nil
}

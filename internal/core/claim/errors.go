package claim

import (
	"errors"
	"fmt"
)

// Base error kinds. Every error returned by the claim protocol wraps exactly one of them,
// so callers classify failures with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrClaimClosed       = errors.New("claim closed")
	ErrCodeExpired       = errors.New("code expired")
	ErrCodeMismatch      = errors.New("code mismatch")
	ErrValidation        = errors.New("validation failed")
)

// Specific failures.
var (
	ErrClaimNotFound        = fmt.Errorf("%w: claim", ErrNotFound)
	ErrItemNotFound         = fmt.Errorf("%w: item", ErrNotFound)
	ErrItemAlreadyClaimed   = fmt.Errorf("%w: item already recovered", ErrInvalidTransition)
	ErrSelfClaimForbidden   = fmt.Errorf("%w: cannot claim your own item", ErrForbidden)
	ErrDuplicateActiveClaim = fmt.Errorf("%w: active claim on this item already exists", ErrInvalidTransition)
	ErrNotAParty            = fmt.Errorf("%w: caller is not a party to this claim", ErrForbidden)
	ErrWrongActor           = fmt.Errorf("%w: action not allowed for this role", ErrForbidden)
	ErrNotInRequestedState  = fmt.Errorf("%w: identity verification is not currently requested", ErrInvalidTransition)
	ErrClaimNotReady        = fmt.Errorf("%w: handover not initiated", ErrInvalidTransition)
	ErrNoActiveCode         = fmt.Errorf("%w: finder has not issued a handover code", ErrInvalidTransition)
	ErrCodeLocked           = fmt.Errorf("%w: too many failed attempts, a new code is required", ErrCodeExpired)
)

// Kind returns a stable machine-readable name of the error class, or "" for foreign errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrClaimClosed):
		return "claim_closed"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrCodeExpired):
		return "code_expired"
	case errors.Is(err, ErrCodeMismatch):
		return "code_mismatch"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	}
	return ""
}

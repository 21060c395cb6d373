// Package claim contains the pure business rules of the claim lifecycle:
// statuses, roles, the transition table and the guards evaluated before a
// transition is persisted. Nothing here performs I/O.
package claim

import "fmt"

// Status is the canonical state of a claim.
type Status string

const (
	StatusActive            Status = "active"
	StatusIdentityRequested Status = "identity_requested"
	StatusIdentitySubmitted Status = "identity_submitted"
	StatusHandoverInitiated Status = "handover_initiated"
	StatusReturned          Status = "returned"
	StatusRejected          Status = "rejected"
)

// AllStatuses lists statuses in happy-path order, terminal ones last.
var AllStatuses = []Status{
	StatusActive,
	StatusIdentityRequested,
	StatusIdentitySubmitted,
	StatusHandoverInitiated,
	StatusReturned,
	StatusRejected,
}

// ParseStatus validates a stored or transmitted status label.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown claim status %q", ErrValidation, s)
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusRejected
}

// LegacyStatus is the coarse three-state vocabulary used by older clients.
type LegacyStatus string

const (
	LegacyPending  LegacyStatus = "Pending"
	LegacyApproved LegacyStatus = "Approved"
	LegacyRejected LegacyStatus = "Rejected"
)

// Legacy folds the canonical status into the coarse view. It is read-only:
// the coarse labels are never accepted as input.
func (s Status) Legacy() LegacyStatus {
	switch s {
	case StatusHandoverInitiated, StatusReturned:
		return LegacyApproved
	case StatusRejected:
		return LegacyRejected
	default:
		return LegacyPending
	}
}

// Role of the caller relative to a claim. Always derived from the claim record.
type Role string

const (
	RoleNone     Role = "none"
	RoleFinder   Role = "finder"
	RoleClaimant Role = "claimant"
)

// ResolveRole derives the caller's role from the claim's parties.
func ResolveRole(finderID, claimantID, callerID int64) Role {
	switch callerID {
	case finderID:
		return RoleFinder
	case claimantID:
		return RoleClaimant
	default:
		return RoleNone
	}
}

// Counterparty returns the other side of the exchange.
func (r Role) Counterparty() Role {
	switch r {
	case RoleFinder:
		return RoleClaimant
	case RoleClaimant:
		return RoleFinder
	default:
		return RoleNone
	}
}

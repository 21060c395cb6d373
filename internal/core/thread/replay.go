package thread

import (
	"fmt"
	"sort"
	"time"

	"FindIt/internal/core/claim"
)

// Entry is a decoded thread message.
type Entry struct {
	ID        string      `json:"id"`
	Seq       int64       `json:"seq"`
	SenderID  int64       `json:"sender_id"`
	Type      MessageType `json:"message_type"`
	Content   string      `json:"content"`
	Payload   Payload     `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// State is what a client can reconstruct from the thread alone.
type State struct {
	Status claim.Status

	// IdentityFormOutstanding is true while the latest identity_form awaits an answer.
	IdentityFormOutstanding bool
	PendingSchema           IdentitySchema
	LastFormSeq             int64
	LastResponseSeq         int64

	// CodeOutstanding is true while an issued code is neither revoked,
	// consumed nor expired at the replay instant.
	CodeOutstanding bool
	CodeExpiresAt   *time.Time
	LastCodeSeq     int64
	LastInitSeq     int64
}

// ErrCorruptThread is returned when a thread cannot be the output of legal transitions.
var ErrCorruptThread = fmt.Errorf("%w: thread does not replay", claim.ErrInvalidTransition)

// Replay folds the thread into a State. Entries are processed in seq order.
// Every status-changing entry is checked against the transition table with
// the role that is allowed to emit it.
func Replay(entries []Entry, now time.Time) (State, error) {
	ordered := append([]Entry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	var st State
	step := func(e Entry, a claim.Action) error {
		next, err := claim.Transition(st.Status, a, a.Actor())
		if err != nil {
			return fmt.Errorf("%w: seq %d %s: %v", ErrCorruptThread, e.Seq, e.Type, err)
		}
		st.Status = next
		return nil
	}

	for i, e := range ordered {
		if i == 0 {
			sp, ok := e.Payload.(SystemPayload)
			if !ok || sp.Event != EventClaimCreated {
				return st, fmt.Errorf("%w: first entry must record claim creation", ErrCorruptThread)
			}
			st.Status = claim.StatusActive
			continue
		}
		switch p := e.Payload.(type) {
		case TextPayload:
		case SystemPayload:
			switch p.Event {
			case EventClaimRejected, EventClaimAutoRejected:
				if err := step(e, claim.ActionReject); err != nil {
					return st, err
				}
				st.IdentityFormOutstanding = false
				st.CodeOutstanding = false
			case EventCodeRevoked:
				st.CodeOutstanding = false
			case EventClaimCreated:
				return st, fmt.Errorf("%w: seq %d repeats claim creation", ErrCorruptThread, e.Seq)
			}
		case IdentityFormPayload:
			if err := step(e, claim.ActionRequestIdentity); err != nil {
				return st, err
			}
			st.IdentityFormOutstanding = true
			st.PendingSchema = p.Schema
			st.LastFormSeq = e.Seq
		case IdentityResponsePayload:
			if err := step(e, claim.ActionSubmitIdentity); err != nil {
				return st, err
			}
			st.IdentityFormOutstanding = false
			st.LastResponseSeq = e.Seq
		case HandoverInitPayload:
			switch p.Stage {
			case StageInitiated:
				if err := step(e, claim.ActionInitiateHandover); err != nil {
					return st, err
				}
				st.LastInitSeq = e.Seq
			case StageCodeIssued:
				if st.Status != claim.StatusHandoverInitiated {
					return st, fmt.Errorf("%w: seq %d code issued while %s", ErrCorruptThread, e.Seq, st.Status)
				}
				st.CodeOutstanding = true
				st.CodeExpiresAt = p.ExpiresAt
				st.LastCodeSeq = e.Seq
			default:
				return st, fmt.Errorf("%w: seq %d unknown handover stage %q", ErrCorruptThread, e.Seq, p.Stage)
			}
		case HandoverConfirmPayload:
			if err := step(e, claim.ActionConfirmHandover); err != nil {
				return st, err
			}
			st.CodeOutstanding = false
		default:
			return st, fmt.Errorf("%w: seq %d has no payload", ErrCorruptThread, e.Seq)
		}
	}

	if st.CodeOutstanding && st.CodeExpiresAt != nil && !now.Before(*st.CodeExpiresAt) {
		st.CodeOutstanding = false
	}
	return st, nil
}

package thread

import (
	"time"

	"FindIt/internal/core/claim"
)

// Hint names the action a client should offer on an interactive entry.
type Hint string

const (
	HintNone           Hint = ""
	HintSubmitIdentity Hint = "submit_identity"
	HintReviewIdentity Hint = "review_identity"
	HintIssueCode      Hint = "issue_code"
	HintEnterCode      Hint = "enter_code"
)

// View is an entry as seen by one party.
type View struct {
	Entry
	Interactive bool `json:"interactive"`
	Stale       bool `json:"stale"`
	Action      Hint `json:"action,omitempty"`
}

// Render marks each entry interactive or read-only for viewer. status is the
// authoritative claim status; an entry is only interactive when it is the
// latest of its kind and status still admits the action it offers.
func Render(entries []Entry, viewer claim.Role, status claim.Status, now time.Time) ([]View, error) {
	st, err := Replay(entries, now)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(entries))
	for _, e := range entries {
		v := View{Entry: e}
		switch p := e.Payload.(type) {
		case IdentityFormPayload:
			v.Stale = e.Seq != st.LastFormSeq
			if !v.Stale && viewer == claim.RoleClaimant && status == claim.StatusIdentityRequested {
				v.Interactive, v.Action = true, HintSubmitIdentity
			}
		case IdentityResponsePayload:
			v.Stale = e.Seq != st.LastResponseSeq
			if !v.Stale && viewer == claim.RoleFinder && status == claim.StatusIdentitySubmitted {
				v.Interactive, v.Action = true, HintReviewIdentity
			}
		case HandoverInitPayload:
			switch p.Stage {
			case StageInitiated:
				v.Stale = e.Seq != st.LastInitSeq
				if !v.Stale && viewer == claim.RoleFinder && status == claim.StatusHandoverInitiated && !st.CodeOutstanding {
					v.Interactive, v.Action = true, HintIssueCode
				}
			case StageCodeIssued:
				v.Stale = e.Seq != st.LastCodeSeq || !st.CodeOutstanding
				if !v.Stale && viewer == claim.RoleClaimant && status == claim.StatusHandoverInitiated {
					v.Interactive, v.Action = true, HintEnterCode
				}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

package claim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_HappyPath(t *testing.T) {
	steps := []struct {
		action Action
		role   Role
		want   Status
	}{
		{ActionRequestIdentity, RoleFinder, StatusIdentityRequested},
		{ActionSubmitIdentity, RoleClaimant, StatusIdentitySubmitted},
		{ActionRequestIdentity, RoleFinder, StatusIdentityRequested},
		{ActionSubmitIdentity, RoleClaimant, StatusIdentitySubmitted},
		{ActionInitiateHandover, RoleFinder, StatusHandoverInitiated},
		{ActionConfirmHandover, RoleClaimant, StatusReturned},
	}

	st := StatusActive
	for _, s := range steps {
		next, err := Transition(st, s.action, s.role)
		if !assert.NoError(t, err, "%s from %s", s.action, st) {
			return
		}
		assert.Equal(t, s.want, next)
		st = next
	}
}

func TestTransition_Errors(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		action  Action
		role    Role
		wantErr error
	}{
		{"outsider cannot act", StatusActive, ActionReject, RoleNone, ErrForbidden},
		{"claimant cannot request identity", StatusActive, ActionRequestIdentity, RoleClaimant, ErrForbidden},
		{"claimant cannot initiate handover", StatusIdentitySubmitted, ActionInitiateHandover, RoleClaimant, ErrForbidden},
		{"claimant cannot reject", StatusActive, ActionReject, RoleClaimant, ErrForbidden},
		{"claimant cannot reject closed claim either", StatusReturned, ActionReject, RoleClaimant, ErrForbidden},
		{"finder cannot submit identity", StatusIdentityRequested, ActionSubmitIdentity, RoleFinder, ErrForbidden},
		{"submit before request", StatusActive, ActionSubmitIdentity, RoleClaimant, ErrInvalidTransition},
		{"handover before identity", StatusActive, ActionInitiateHandover, RoleFinder, ErrInvalidTransition},
		{"handover while identity requested", StatusIdentityRequested, ActionInitiateHandover, RoleFinder, ErrInvalidTransition},
		{"request identity twice", StatusIdentityRequested, ActionRequestIdentity, RoleFinder, ErrInvalidTransition},
		{"confirm before handover", StatusIdentitySubmitted, ActionConfirmHandover, RoleClaimant, ErrInvalidTransition},
		{"reject returned", StatusReturned, ActionReject, RoleFinder, ErrClaimClosed},
		{"reject rejected", StatusRejected, ActionReject, RoleFinder, ErrClaimClosed},
		{"confirm returned", StatusReturned, ActionConfirmHandover, RoleClaimant, ErrClaimClosed},
		{"request identity on rejected", StatusRejected, ActionRequestIdentity, RoleFinder, ErrClaimClosed},
		{"unknown action", StatusActive, Action("dance"), RoleFinder, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.action, tt.role)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.from, got, "failed transition must not change status")
		})
	}
}

func TestTransition_SpecificErrors(t *testing.T) {
	_, err := Transition(StatusActive, ActionSubmitIdentity, RoleClaimant)
	assert.ErrorIs(t, err, ErrNotInRequestedState)

	_, err = Transition(StatusIdentitySubmitted, ActionConfirmHandover, RoleClaimant)
	assert.ErrorIs(t, err, ErrClaimNotReady)
}

// Перебираем все пары (статус, действие, роль): результат либо ребро таблицы, либо ошибка без смены статуса.
func TestTransition_OnlyTableEdges(t *testing.T) {
	allowed := map[Status][]Status{
		StatusActive:            {StatusIdentityRequested, StatusRejected},
		StatusIdentityRequested: {StatusIdentitySubmitted, StatusRejected},
		StatusIdentitySubmitted: {StatusIdentityRequested, StatusHandoverInitiated, StatusRejected},
		StatusHandoverInitiated: {StatusReturned, StatusRejected},
	}
	actions := []Action{ActionRequestIdentity, ActionSubmitIdentity, ActionInitiateHandover, ActionConfirmHandover, ActionReject}
	roles := []Role{RoleNone, RoleFinder, RoleClaimant}

	for _, from := range AllStatuses {
		for _, a := range actions {
			for _, r := range roles {
				to, err := Transition(from, a, r)
				if err != nil {
					assert.Equal(t, from, to)
					continue
				}
				assert.Contains(t, allowed[from], to, "%s --%s/%s--> %s", from, a, r, to)
				if from.IsTerminal() {
					t.Fatalf("terminal status %s left via %s", from, a)
				}
			}
		}
	}
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     CreateContext
		wantErr error
	}{
		{"ok", CreateContext{ItemExists: true, FinderID: 1, ClaimantID: 2}, nil},
		{"missing item", CreateContext{FinderID: 1, ClaimantID: 2}, ErrItemNotFound},
		{"recovered item", CreateContext{ItemExists: true, ItemRecovered: true, FinderID: 1, ClaimantID: 2}, ErrItemAlreadyClaimed},
		{"self claim", CreateContext{ItemExists: true, FinderID: 3, ClaimantID: 3}, ErrSelfClaimForbidden},
		{"duplicate", CreateContext{ItemExists: true, FinderID: 1, ClaimantID: 2, HasNonTerminalDup: true}, ErrDuplicateActiveClaim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanCreate(tt.ctx)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCanIssueCode(t *testing.T) {
	assert.NoError(t, CanIssueCode(StatusHandoverInitiated, RoleFinder))
	assert.ErrorIs(t, CanIssueCode(StatusHandoverInitiated, RoleClaimant), ErrForbidden)
	assert.ErrorIs(t, CanIssueCode(StatusHandoverInitiated, RoleNone), ErrForbidden)
	assert.ErrorIs(t, CanIssueCode(StatusIdentitySubmitted, RoleFinder), ErrClaimNotReady)
	assert.ErrorIs(t, CanIssueCode(StatusReturned, RoleFinder), ErrClaimClosed)
}

func TestLegacyAndRoles(t *testing.T) {
	assert.Equal(t, LegacyPending, StatusActive.Legacy())
	assert.Equal(t, LegacyPending, StatusIdentitySubmitted.Legacy())
	assert.Equal(t, LegacyApproved, StatusHandoverInitiated.Legacy())
	assert.Equal(t, LegacyApproved, StatusReturned.Legacy())
	assert.Equal(t, LegacyRejected, StatusRejected.Legacy())

	assert.Equal(t, RoleFinder, ResolveRole(1, 2, 1))
	assert.Equal(t, RoleClaimant, ResolveRole(1, 2, 2))
	assert.Equal(t, RoleNone, ResolveRole(1, 2, 3))
	assert.Equal(t, RoleClaimant, RoleFinder.Counterparty())

	st, err := ParseStatus("handover_initiated")
	assert.NoError(t, err)
	assert.Equal(t, StatusHandoverInitiated, st)
	_, err = ParseStatus("Approved")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKind(t *testing.T) {
	assert.Equal(t, "forbidden", Kind(ErrSelfClaimForbidden))
	assert.Equal(t, "invalid_transition", Kind(ErrDuplicateActiveClaim))
	assert.Equal(t, "code_expired", Kind(ErrCodeLocked))
	assert.Equal(t, "not_found", Kind(ErrItemNotFound))
	assert.Equal(t, "", Kind(errors.New("boom")))
}

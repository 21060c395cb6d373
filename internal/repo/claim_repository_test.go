package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
	"FindIt/internal/model"
)

func TestClaimRepository_UpdateStatusIsCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)
	f := seed(t, s)
	ctx := context.Background()
	c := mkClaim(t, s, f, f.claimant.ID, claim.StatusActive)

	ok, err := s.Claims().UpdateStatus(ctx, c.ID, claim.StatusActive, claim.StatusIdentityRequested, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	// второй писатель с устаревшим from проигрывает
	ok, err = s.Claims().UpdateStatus(ctx, c.ID, claim.StatusActive, claim.StatusRejected, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Claims().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, claim.StatusIdentityRequested, got.Status)

	_, err = s.Claims().GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClaimRepository_NonTerminalQueries(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)
	f := seed(t, s)
	ctx := context.Background()

	dup, err := s.Claims().HasNonTerminal(ctx, f.item.ID, f.claimant.ID)
	require.NoError(t, err)
	assert.False(t, dup)

	mkClaim(t, s, f, f.claimant.ID, claim.StatusRejected)
	dup, err = s.Claims().HasNonTerminal(ctx, f.item.ID, f.claimant.ID)
	require.NoError(t, err)
	assert.False(t, dup, "rejected claims do not block a new one")

	winner := mkClaim(t, s, f, f.claimant.ID, claim.StatusHandoverInitiated)
	sibling := mkClaim(t, s, f, f.other.ID, claim.StatusIdentitySubmitted)

	dup, err = s.Claims().HasNonTerminal(ctx, f.item.ID, f.claimant.ID)
	require.NoError(t, err)
	assert.True(t, dup)

	siblings, err := s.Claims().ListNonTerminalByItem(ctx, f.item.ID, winner.ID)
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, sibling.ID, siblings[0].ID)
}

func TestClaimRepository_ListForUser(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)
	f := seed(t, s)
	ctx := context.Background()

	older := mkClaim(t, s, f, f.claimant.ID, claim.StatusActive)
	newer := mkClaim(t, s, f, f.other.ID, claim.StatusActive)

	_, raw, err := thread.Encode(thread.TextPayload{Text: "hello there"})
	require.NoError(t, err)
	require.NoError(t, s.Messages().Append(ctx, &model.Message{
		ID: uuid.NewString(), ClaimID: older.ID, SenderID: f.claimant.ID,
		Type: thread.TypeText, Content: "hello there", Payload: datatypes.JSON(raw),
	}))
	touchedAt := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	require.NoError(t, s.Claims().Touch(ctx, older.ID, touchedAt))

	// нашедший видит обе заявки, свежая активность первой
	list, err := s.Claims().ListForUser(ctx, f.finder.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.True(t, touchedAt.Equal(list[0].UpdatedAt), "updated_at comes from the caller: %v", list[0].UpdatedAt)
	assert.Equal(t, "Carl Claimant", list[0].OtherPartyName)
	assert.Equal(t, "hello there", list[0].LastMessage)
	assert.Equal(t, "Blue umbrella", list[0].ItemTitle)
	assert.Equal(t, newer.ID, list[1].ID)
	assert.Equal(t, "other", list[1].OtherPartyName, "falls back to login")
	assert.Empty(t, list[1].LastMessage)

	// заявитель видит только свою, собеседник: нашедший
	list, err = s.Claims().ListForUser(ctx, f.claimant.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fiona Finder", list[0].OtherPartyName)
	assert.Equal(t, claim.StatusActive, list[0].Status)
}

func TestStore_InTxRollsBack(t *testing.T) {
	db := newTestDB(t)
	s := NewStore(db)
	f := seed(t, s)
	ctx := context.Background()
	c := mkClaim(t, s, f, f.claimant.ID, claim.StatusActive)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx Store) error {
		ok, err := tx.Claims().UpdateStatus(ctx, c.ID, claim.StatusActive, claim.StatusRejected, time.Now())
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Claims().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, claim.StatusActive, got.Status)
}

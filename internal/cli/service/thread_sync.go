package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FindIt/internal/cli/model"
	crepo "FindIt/internal/cli/repo"
	reposqlite "FindIt/internal/cli/repo/sqlite"
	"FindIt/internal/core/thread"
)

// ThreadAPI: то, что синхронизации нужно от сервера.
type ThreadAPI interface {
	ListClaims(ctx context.Context) ([]model.Claim, error)
	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)
	Messages(ctx context.Context, claimID string, after int64) ([]thread.Entry, error)
}

// ThreadSync держит локальную копию лент в актуальном состоянии.
// Лента только дописывается, поэтому достаточно забирать сообщения после
// наибольшего известного seq.
type ThreadSync struct {
	API  ThreadAPI
	Repo crepo.ThreadRepository
	Now  func() time.Time
}

func NewThreadSync(api ThreadAPI, r crepo.ThreadRepository) *ThreadSync {
	return &ThreadSync{API: api, Repo: r, Now: time.Now}
}

// LocalThread: лента, восстановленная из локальной копии.
type LocalThread struct {
	Claim model.Claim
	State thread.State
	Views []thread.View
}

// RefreshClaims перечитывает список заявок с сервера.
func (s *ThreadSync) RefreshClaims(ctx context.Context) ([]model.Claim, error) {
	claims, err := s.API.ListClaims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveClaims(claims); err != nil {
		return nil, fmt.Errorf("save claims: %w", err)
	}
	return claims, nil
}

// Pull догружает новые сообщения ленты и возвращает их число.
func (s *ThreadSync) Pull(ctx context.Context, claimID string) (int, error) {
	if _, err := s.Repo.GetClaim(claimID); errors.Is(err, reposqlite.ErrClaimNotCached) {
		c, err := s.API.GetClaim(ctx, claimID)
		if err != nil {
			return 0, err
		}
		if err := s.Repo.SaveClaims([]model.Claim{*c}); err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	after, err := s.Repo.MaxSeq(claimID)
	if err != nil {
		return 0, err
	}
	entries, err := s.API.Messages(ctx, claimID, after)
	if err != nil {
		return 0, err
	}
	return s.Repo.AppendEntries(claimID, entries)
}

// Local восстанавливает состояние заявки только по сохранённой ленте.
func (s *ThreadSync) Local(claimID string) (*LocalThread, error) {
	c, err := s.Repo.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Repo.Entries(claimID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	st, err := thread.Replay(entries, now)
	if err != nil {
		return nil, err
	}
	// статус из ленты свежее, чем из последнего списка заявок
	c.Status = st.Status
	c.LegacyStatus = st.Status.Legacy()
	views, err := thread.Render(entries, c.Role, st.Status, now)
	if err != nil {
		return nil, err
	}
	return &LocalThread{Claim: *c, State: st, Views: views}, nil
}

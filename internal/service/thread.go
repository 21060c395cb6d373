package service

import (
	"context"
	"strings"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// GetThread возвращает сообщения заявки с seq > afterSeq по порядку.
func (s *ClaimService) GetThread(ctx context.Context, claimID string, callerID int64, afterSeq int64) ([]thread.Entry, error) {
	if _, _, err := s.GetClaim(ctx, claimID, callerID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages().List(ctx, claimID, afterSeq)
	if err != nil {
		return nil, err
	}
	return model.Entries(msgs)
}

// ThreadView: лента, размеченная для конкретного участника.
type ThreadView struct {
	Claim   *model.Claim
	Role    claim.Role
	Legacy  claim.LegacyStatus
	State   thread.State
	Entries []thread.View
}

// ViewThread размечает каждое сообщение как интерактивное или только для чтения.
func (s *ClaimService) ViewThread(ctx context.Context, claimID string, callerID int64) (*ThreadView, error) {
	c, role, err := s.GetClaim(ctx, claimID, callerID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages().List(ctx, claimID, 0)
	if err != nil {
		return nil, err
	}
	entries, err := model.Entries(msgs)
	if err != nil {
		return nil, err
	}
	now := s.now()
	st, err := thread.Replay(entries, now)
	if err != nil {
		return nil, err
	}
	if st.Status != c.Status {
		s.logger.Errorw("thread and claim status disagree", "claim_id", c.ID, "thread", st.Status, "claim", c.Status)
	}
	views, err := thread.Render(entries, role, c.Status, now)
	if err != nil {
		return nil, err
	}
	return &ThreadView{Claim: c, Role: role, Legacy: c.Status.Legacy(), State: st, Entries: views}, nil
}

// PostTextMessage добавляет сообщение участника в открытую заявку.
func (s *ClaimService) PostTextMessage(ctx context.Context, claimID string, senderID int64, content string) (*thread.Entry, error) {
	if err := claim.ValidateMessageText(content); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)

	unlock := s.locks.Lock(claimID)
	defer unlock()

	var msg *model.Message
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		c, err := s.load(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if err := claim.CanPostMessage(c.Status, c.Role(senderID)); err != nil {
			return err
		}
		if msg, err = s.appendMessage(ctx, tx, c.ID, senderID, thread.TextPayload{Text: content}, content); err != nil {
			return err
		}
		return tx.Claims().Touch(ctx, c.ID, s.now())
	})
	if err != nil {
		return nil, err
	}
	e, err := msg.Entry()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/handover"
	"FindIt/internal/core/thread"
	"FindIt/internal/events"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// InitiateHandover: нашедший переводит заявку к передаче вещи.
func (s *ClaimService) InitiateHandover(ctx context.Context, claimID string, finderID int64) (*model.Claim, error) {
	return s.transition(ctx, claimID, finderID, claim.ActionInitiateHandover, func(repo.Store, *model.Claim) (thread.Payload, string, error) {
		return thread.HandoverInitPayload{Stage: thread.StageInitiated, Owner: claim.RoleFinder}, "Handover initiated", nil
	})
}

// CodeGrant: выданный нашедшему код передачи.
type CodeGrant struct {
	Code      string
	ExpiresAt time.Time
	// Reused: код уже был выдан ранее и ещё действует; в ленту ничего не записано.
	Reused bool
}

// StartHandoverCode выдаёт нашедшему одноразовый код, который он показывает
// заявителю при встрече. Пока код действует, повторный вызов возвращает его же.
func (s *ClaimService) StartHandoverCode(ctx context.Context, claimID string, callerID int64) (*CodeGrant, error) {
	unlock := s.locks.Lock(claimID)
	defer unlock()

	var grant *CodeGrant
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		c, err := s.load(ctx, tx, claimID)
		if err != nil {
			return err
		}
		if err := claim.CanIssueCode(c.Status, c.Role(callerID)); err != nil {
			return err
		}

		now := s.now()
		active, err := tx.Codes().GetActive(ctx, c.ID)
		if err != nil {
			return err
		}
		if active != nil {
			t := active.Ticket()
			if !t.Expired(now) && active.FailedAttempts < s.cfg.MaxAttempts {
				grant = &CodeGrant{Code: active.Code, ExpiresAt: active.ExpiresAt, Reused: true}
				return nil
			}
			if err := tx.Codes().Revoke(ctx, active.ID, now); err != nil {
				return err
			}
		}

		code, err := handover.Generate(s.codeRand)
		if err != nil {
			return err
		}
		t := handover.NewTicket(code, now, s.cfg.CodeTTL)
		rec := &model.HandoverCode{
			ID:        uuid.NewString(),
			ClaimID:   c.ID,
			Owner:     claim.RoleFinder,
			Code:      t.Code,
			IssuedAt:  t.IssuedAt,
			ExpiresAt: t.ExpiresAt,
		}
		if err := tx.Codes().Create(ctx, rec); err != nil {
			return err
		}
		exp := t.ExpiresAt
		payload := thread.HandoverInitPayload{Stage: thread.StageCodeIssued, Owner: claim.RoleFinder, ExpiresAt: &exp}
		if _, err := s.appendMessage(ctx, tx, c.ID, callerID, payload, "Handover code issued"); err != nil {
			return err
		}
		if err := tx.Claims().Touch(ctx, c.ID, now); err != nil {
			return err
		}
		grant = &CodeGrant{Code: t.Code, ExpiresAt: t.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !grant.Reused {
		s.logger.Infow("handover code issued", "claim_id", claimID, "expires_at", grant.ExpiresAt)
	}
	return grant, nil
}

// VerifyHandoverCode: заявитель вводит код нашедшего. При совпадении заявка
// становится returned, вещь recovered, а остальные заявки на вещь закрываются.
// Неудачные попытки сохраняются даже при ошибке.
func (s *ClaimService) VerifyHandoverCode(ctx context.Context, claimID string, callerID int64, input string) (*model.Claim, error) {
	keys, err := s.handoverLockKeys(ctx, claimID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.LockAll(keys...)
	defer unlock()

	var (
		outcome error
		updated *model.Claim
		evs     []events.ClaimEvent
	)
	err = s.store.InTx(ctx, func(tx repo.Store) error {
		c, err := s.load(ctx, tx, claimID)
		if err != nil {
			return err
		}
		next, err := claim.Transition(c.Status, claim.ActionConfirmHandover, c.Role(callerID))
		if err != nil {
			return err
		}
		code, err := claim.ValidateCodeFormat(input)
		if err != nil {
			return err
		}
		active, err := tx.Codes().GetActive(ctx, c.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return s.noActiveCode(ctx, tx, c.ID)
		}

		now := s.now()
		switch handover.Check(active.Ticket(), code, now, s.cfg.MaxAttempts) {
		case handover.Expired:
			return claim.ErrCodeExpired
		case handover.Mismatch:
			n, err := tx.Codes().RecordFailure(ctx, active.ID)
			if err != nil {
				return err
			}
			outcome = fmt.Errorf("%w: %d attempt(s) left", claim.ErrCodeMismatch, s.cfg.MaxAttempts-n)
			return nil
		case handover.Locked:
			if _, err := tx.Codes().RecordFailure(ctx, active.ID); err != nil {
				return err
			}
			if err := tx.Codes().Revoke(ctx, active.ID, now); err != nil {
				return err
			}
			if _, err := s.appendMessage(ctx, tx, c.ID, thread.SystemSenderID,
				thread.SystemPayload{Event: thread.EventCodeRevoked},
				"Handover code revoked after too many failed attempts"); err != nil {
				return err
			}
			outcome = claim.ErrCodeLocked
			return nil
		}

		ok, err := tx.Codes().Consume(ctx, active.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return claim.ErrCodeExpired
		}
		it, err := tx.Items().GetByID(ctx, c.ItemID)
		if err != nil {
			return err
		}
		if it.Status == model.ItemRecovered {
			return claim.ErrItemAlreadyClaimed
		}

		from := c.Status
		if err := s.setStatus(ctx, tx, c, next); err != nil {
			return err
		}
		if _, err := s.appendMessage(ctx, tx, c.ID, callerID,
			thread.HandoverConfirmPayload{ConfirmedBy: claim.RoleClaimant, ItemID: c.ItemID}, "Item handed over"); err != nil {
			return err
		}
		if err := tx.Items().MarkRecovered(ctx, c.ItemID); err != nil {
			return err
		}
		evs = append(evs, s.event(c, from, string(claim.ActionConfirmHandover)))

		closed, err := s.autoRejectSiblings(ctx, tx, c)
		if err != nil {
			return err
		}
		evs = append(evs, closed...)
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		s.logger.Infow("handover code rejected", "claim_id", claimID, "error", outcome)
		return nil, outcome
	}

	s.logger.Infow("item returned", "claim_id", claimID, "item_id", updated.ItemID, "auto_rejected", len(evs)-1)
	s.publish(ctx, evs...)
	return updated, nil
}

// handoverLockKeys возвращает заявку и все незавершённые заявки на ту же вещь:
// успешная проверка кода пишет и в их ленты, поэтому держать нужно все.
func (s *ClaimService) handoverLockKeys(ctx context.Context, claimID string) ([]string, error) {
	c, err := s.load(ctx, s.store, claimID)
	if err != nil {
		return nil, err
	}
	siblings, err := s.store.Claims().ListNonTerminalByItem(ctx, c.ItemID, c.ID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(siblings)+1)
	keys = append(keys, c.ID)
	for _, sib := range siblings {
		keys = append(keys, sib.ID)
	}
	return keys, nil
}

// autoRejectSiblings закрывает остальные незавершённые заявки на ту же вещь.
func (s *ClaimService) autoRejectSiblings(ctx context.Context, tx repo.Store, winner *model.Claim) ([]events.ClaimEvent, error) {
	siblings, err := tx.Claims().ListNonTerminalByItem(ctx, winner.ItemID, winner.ID)
	if err != nil {
		return nil, err
	}
	var evs []events.ClaimEvent
	for i := range siblings {
		sib := &siblings[i]
		from := sib.Status
		if err := s.setStatus(ctx, tx, sib, claim.StatusRejected); err != nil {
			return nil, err
		}
		if err := tx.Codes().RevokeAll(ctx, sib.ID, s.now()); err != nil {
			return nil, err
		}
		if _, err := s.appendMessage(ctx, tx, sib.ID, thread.SystemSenderID,
			thread.SystemPayload{Event: thread.EventClaimAutoRejected},
			"Claim closed: the item was returned to another claimant"); err != nil {
			return nil, err
		}
		evs = append(evs, s.event(sib, from, string(thread.EventClaimAutoRejected)))
	}
	return evs, nil
}

// noActiveCode различает «код ещё не выдан» и «код отозван или погашен».
func (s *ClaimService) noActiveCode(ctx context.Context, tx repo.Store, claimID string) error {
	last, err := tx.Codes().Latest(ctx, claimID)
	if err != nil {
		return err
	}
	switch {
	case last == nil:
		return claim.ErrNoActiveCode
	case last.FailedAttempts >= s.cfg.MaxAttempts:
		return claim.ErrCodeLocked
	default:
		return claim.ErrCodeExpired
	}
}

package service

import (
	"context"
	"fmt"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// RequestIdentity: нашедший просит заявителя подтвердить владение.
// Допустимо из active и повторно из identity_submitted.
func (s *ClaimService) RequestIdentity(ctx context.Context, claimID string, finderID int64, schema thread.IdentitySchema) (*model.Claim, error) {
	schema, err := thread.ParseSchema(string(schema))
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, claimID, finderID, claim.ActionRequestIdentity, func(repo.Store, *model.Claim) (thread.Payload, string, error) {
		return thread.NewIdentityForm(schema), "Identity verification requested", nil
	})
}

// SubmitIdentity: заявитель отвечает на последний запрос. Схема ответа
// должна совпадать со схемой запроса, восстановленной из ленты.
func (s *ClaimService) SubmitIdentity(ctx context.Context, claimID string, claimantID int64, resp thread.IdentityResponsePayload) (*model.Claim, error) {
	return s.transition(ctx, claimID, claimantID, claim.ActionSubmitIdentity, func(tx repo.Store, c *model.Claim) (thread.Payload, string, error) {
		st, err := s.replay(ctx, tx, c.ID)
		if err != nil {
			return nil, "", err
		}
		if !st.IdentityFormOutstanding {
			return nil, "", claim.ErrNotInRequestedState
		}
		if err := resp.Validate(st.PendingSchema, s.cfg.MinVerificationText); err != nil {
			return nil, "", err
		}
		return resp, "Identity details submitted", nil
	})
}

// replay восстанавливает состояние подпротоколов по ленте заявки.
func (s *ClaimService) replay(ctx context.Context, st repo.Store, claimID string) (thread.State, error) {
	msgs, err := st.Messages().List(ctx, claimID, 0)
	if err != nil {
		return thread.State{}, err
	}
	entries, err := model.Entries(msgs)
	if err != nil {
		return thread.State{}, err
	}
	state, err := thread.Replay(entries, s.now())
	if err != nil {
		s.logger.Errorw("thread does not replay", "claim_id", claimID, "error", err)
		return thread.State{}, fmt.Errorf("claim %s: %w", claimID, err)
	}
	return state, nil
}

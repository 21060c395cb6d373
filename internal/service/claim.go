package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/handover"
	"FindIt/internal/core/thread"
	"FindIt/internal/events"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// ClaimConfig: параметры протокола заявки.
type ClaimConfig struct {
	CodeTTL             time.Duration
	MaxAttempts         int
	MinVerificationText int
	RequireProof        bool
}

func (c ClaimConfig) withDefaults() ClaimConfig {
	if c.CodeTTL <= 0 {
		c.CodeTTL = handover.DefaultTTL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = handover.DefaultMaxAttempts
	}
	if c.MinVerificationText <= 0 {
		c.MinVerificationText = claim.DefaultMinVerificationText
	}
	return c
}

// ClaimService проводит заявку от создания до передачи вещи.
// Каждое принятое изменение статуса выполняется под блокировкой заявки,
// в одной транзакции с записью сообщения в ленту.
type ClaimService struct {
	store  repo.Store
	events events.Publisher
	logger *zap.SugaredLogger
	cfg    ClaimConfig
	locks  *KeyedMutex

	now      func() time.Time
	codeRand io.Reader
}

func NewClaimService(store repo.Store, pub events.Publisher, logger *zap.SugaredLogger, cfg ClaimConfig) *ClaimService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ClaimService{
		store:    store,
		events:   pub,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		locks:    NewKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
		codeRand: rand.Reader,
	}
}

// Config возвращает действующие параметры с подставленными умолчаниями.
func (s *ClaimService) Config() ClaimConfig { return s.cfg }

// ClaimListing: строка списка заявок пользователя.
type ClaimListing struct {
	model.ClaimSummary
	Role   claim.Role
	Legacy claim.LegacyStatus
}

// CreateClaim открывает заявку на вещь от имени заявителя.
func (s *ClaimService) CreateClaim(ctx context.Context, itemID string, claimantID int64, proof string) (*model.Claim, error) {
	if err := claim.ValidateProof(proof, s.cfg.MinVerificationText, s.cfg.RequireProof); err != nil {
		return nil, err
	}
	proof = strings.TrimSpace(proof)

	unlock := s.locks.Lock("item:" + itemID + ":" + strconv.FormatInt(claimantID, 10))
	defer unlock()

	var created *model.Claim
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		cc := claim.CreateContext{ClaimantID: claimantID}
		it, err := tx.Items().GetByID(ctx, itemID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			cc.ItemExists = true
			cc.ItemRecovered = it.Status == model.ItemRecovered
			cc.FinderID = it.FinderID
		}
		if cc.ItemExists && !cc.ItemRecovered && cc.FinderID != claimantID {
			if cc.HasNonTerminalDup, err = tx.Claims().HasNonTerminal(ctx, itemID, claimantID); err != nil {
				return err
			}
		}
		if err := claim.CanCreate(cc); err != nil {
			return err
		}

		now := s.now()
		c := &model.Claim{
			ID:         uuid.NewString(),
			ItemID:     itemID,
			FinderID:   it.FinderID,
			ClaimantID: claimantID,
			Status:     claim.StatusActive,
			Proof:      proof,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Claims().Create(ctx, c); err != nil {
			return err
		}
		if _, err := s.appendMessage(ctx, tx, c.ID, thread.SystemSenderID,
			thread.SystemPayload{Event: thread.EventClaimCreated}, "Claim started"); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("claim created", "claim_id", created.ID, "item_id", itemID, "claimant_id", claimantID)
	s.publish(ctx, s.event(created, "", string(thread.EventClaimCreated)))
	return created, nil
}

// GetClaim возвращает заявку и роль вызывающего. Не участнику: Forbidden.
func (s *ClaimService) GetClaim(ctx context.Context, claimID string, callerID int64) (*model.Claim, claim.Role, error) {
	c, err := s.load(ctx, s.store, claimID)
	if err != nil {
		return nil, claim.RoleNone, err
	}
	role := c.Role(callerID)
	if role == claim.RoleNone {
		return nil, role, claim.ErrNotAParty
	}
	return c, role, nil
}

// ListClaims возвращает заявки, где пользователь нашедший или заявитель,
// начиная с последних по активности.
func (s *ClaimService) ListClaims(ctx context.Context, userID int64) ([]ClaimListing, error) {
	rows, err := s.store.Claims().ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ClaimListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClaimListing{
			ClaimSummary: r,
			Role:         r.Role(userID),
			Legacy:       r.Status.Legacy(),
		})
	}
	return out, nil
}

// RejectClaim закрывает заявку по решению нашедшего.
func (s *ClaimService) RejectClaim(ctx context.Context, claimID string, finderID int64, reason string) (*model.Claim, error) {
	return s.transition(ctx, claimID, finderID, claim.ActionReject, func(tx repo.Store, c *model.Claim) (thread.Payload, string, error) {
		if err := tx.Codes().RevokeAll(ctx, c.ID, s.now()); err != nil {
			return nil, "", err
		}
		content := "Claim rejected"
		if reason != "" {
			content += ": " + reason
		}
		return thread.SystemPayload{Event: thread.EventClaimRejected, Note: reason}, content, nil
	})
}

type buildFunc func(tx repo.Store, c *model.Claim) (thread.Payload, string, error)

// transition проверяет действие по таблице переходов, меняет статус через
// compare-and-set и записывает ровно одно сообщение, всё в одной транзакции.
func (s *ClaimService) transition(ctx context.Context, claimID string, callerID int64, action claim.Action, build buildFunc) (*model.Claim, error) {
	unlock := s.locks.Lock(claimID)
	defer unlock()

	var (
		updated *model.Claim
		from    claim.Status
	)
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		c, err := s.load(ctx, tx, claimID)
		if err != nil {
			return err
		}
		next, err := claim.Transition(c.Status, action, c.Role(callerID))
		if err != nil {
			return err
		}
		payload, content, err := build(tx, c)
		if err != nil {
			return err
		}
		from = c.Status
		if err := s.setStatus(ctx, tx, c, next); err != nil {
			return err
		}
		sender := callerID
		if payload.Type() == thread.TypeSystem {
			sender = thread.SystemSenderID
		}
		if _, err := s.appendMessage(ctx, tx, c.ID, sender, payload, content); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("claim transition", "claim_id", claimID, "action", action, "from", from, "to", updated.Status)
	s.publish(ctx, s.event(updated, from, string(action)))
	return updated, nil
}

// setStatus меняет статус, только если его не изменили параллельно.
func (s *ClaimService) setStatus(ctx context.Context, tx repo.Store, c *model.Claim, next claim.Status) error {
	now := s.now()
	ok, err := tx.Claims().UpdateStatus(ctx, c.ID, c.Status, next, now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: claim was modified concurrently", claim.ErrInvalidTransition)
	}
	c.Status = next
	c.UpdatedAt = now
	return nil
}

func (s *ClaimService) load(ctx context.Context, st repo.Store, claimID string) (*model.Claim, error) {
	c, err := st.Claims().GetByID(ctx, claimID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, claim.ErrClaimNotFound
	}
	return c, err
}

func (s *ClaimService) appendMessage(ctx context.Context, tx repo.Store, claimID string, sender int64, p thread.Payload, content string) (*model.Message, error) {
	typ, raw, err := thread.Encode(p)
	if err != nil {
		return nil, err
	}
	m := &model.Message{
		ID:        uuid.NewString(),
		ClaimID:   claimID,
		SenderID:  sender,
		Type:      typ,
		Content:   content,
		Payload:   datatypes.JSON(raw),
		CreatedAt: s.now(),
	}
	if err := tx.Messages().Append(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ClaimService) event(c *model.Claim, from claim.Status, name string) events.ClaimEvent {
	return events.ClaimEvent{
		ClaimID:    c.ID,
		ItemID:     c.ItemID,
		FinderID:   c.FinderID,
		ClaimantID: c.ClaimantID,
		From:       from,
		To:         c.Status,
		Event:      name,
		At:         s.now(),
	}
}

// publish отправляет события после коммита; ошибки только логируются.
func (s *ClaimService) publish(ctx context.Context, evs ...events.ClaimEvent) {
	for _, ev := range evs {
		if err := s.events.Publish(ctx, ev); err != nil {
			s.logger.Warnw("claim event not delivered", "claim_id", ev.ClaimID, "event", ev.Event, "error", err)
		}
	}
}

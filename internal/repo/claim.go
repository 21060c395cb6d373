package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"FindIt/internal/core/claim"
	"FindIt/internal/model"
)

var nonTerminal = []claim.Status{
	claim.StatusActive,
	claim.StatusIdentityRequested,
	claim.StatusIdentitySubmitted,
	claim.StatusHandoverInitiated,
}

// ClaimRepository: доступ к заявкам.
type ClaimRepository interface {
	Create(ctx context.Context, c *model.Claim) error
	// GetByID оборачивает gorm.ErrRecordNotFound, если заявки нет.
	GetByID(ctx context.Context, id string) (*model.Claim, error)
	// HasNonTerminal сообщает, есть ли у заявителя незавершённая заявка на вещь.
	HasNonTerminal(ctx context.Context, itemID string, claimantID int64) (bool, error)
	// ListNonTerminalByItem возвращает незавершённые заявки на вещь, кроме exceptID.
	ListNonTerminalByItem(ctx context.Context, itemID, exceptID string) ([]model.Claim, error)
	// UpdateStatus меняет статус, только если текущий равен from, и ставит updated_at = at.
	// ok=false означает, что заявку успели изменить.
	UpdateStatus(ctx context.Context, id string, from, to claim.Status, at time.Time) (ok bool, err error)
	// Touch ставит updated_at = at, чтобы список заявок сортировался по активности.
	Touch(ctx context.Context, id string, at time.Time) error
	ListForUser(ctx context.Context, userID int64) ([]model.ClaimSummary, error)
}

type claimRepo struct {
	db *gorm.DB
}

// NewClaimRepository создаёт реализацию репозитория для Claim.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) Create(ctx context.Context, c *model.Claim) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(c).Error, "claims: create failed")
}

func (r *claimRepo) GetByID(ctx context.Context, id string) (*model.Claim, error) {
	var c model.Claim
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, errors.Wrap(err, "claims: get failed")
	}
	return &c, nil
}

func (r *claimRepo) HasNonTerminal(ctx context.Context, itemID string, claimantID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("item_id = ? AND claimant_id = ? AND status IN ?", itemID, claimantID, nonTerminal).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "claims: duplicate check failed")
	}
	return n > 0, nil
}

func (r *claimRepo) ListNonTerminalByItem(ctx context.Context, itemID, exceptID string) ([]model.Claim, error) {
	var out []model.Claim
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND id <> ? AND status IN ?", itemID, exceptID, nonTerminal).
		Order("created_at").
		Find(&out).Error
	return out, errors.Wrap(err, "claims: list siblings failed")
}

func (r *claimRepo) UpdateStatus(ctx context.Context, id string, from, to claim.Status, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	if tx.Error != nil {
		return false, errors.Wrap(tx.Error, "claims: update status failed")
	}
	return tx.RowsAffected == 1, nil
}

func (r *claimRepo) Touch(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Claim{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
	return errors.Wrap(err, "claims: touch failed")
}

func (r *claimRepo) ListForUser(ctx context.Context, userID int64) ([]model.ClaimSummary, error) {
	var out []model.ClaimSummary
	err := r.db.WithContext(ctx).
		Table("claims AS c").
		Select(`c.*, i.title AS item_title,
			CASE WHEN c.finder_id = ?
				THEN COALESCE(NULLIF(cu.full_name, ''), cu.login)
				ELSE COALESCE(NULLIF(fu.full_name, ''), fu.login)
			END AS other_party_name,
			COALESCE((SELECT m.content FROM messages m WHERE m.claim_id = c.id ORDER BY m.seq DESC LIMIT 1), '') AS last_message`,
			userID).
		Joins("JOIN items i ON i.id = c.item_id").
		Joins("JOIN users fu ON fu.id = c.finder_id").
		Joins("JOIN users cu ON cu.id = c.claimant_id").
		Where("c.finder_id = ? OR c.claimant_id = ?", userID, userID).
		Order("c.updated_at DESC").
		Scan(&out).Error
	return out, errors.Wrap(err, "claims: list for user failed")
}

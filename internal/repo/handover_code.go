package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"FindIt/internal/model"
)

// HandoverCodeRepository: коды передачи вещи.
type HandoverCodeRepository interface {
	Create(ctx context.Context, c *model.HandoverCode) error
	// GetActive возвращает последний непогашенный и неотозванный код или nil.
	// Истечение срока проверяет сервис.
	GetActive(ctx context.Context, claimID string) (*model.HandoverCode, error)
	// Latest возвращает последний выданный код заявки в любом состоянии или nil.
	Latest(ctx context.Context, claimID string) (*model.HandoverCode, error)
	// RecordFailure увеличивает счётчик неудачных попыток и возвращает новое значение.
	RecordFailure(ctx context.Context, id string) (int, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	// RevokeAll отзывает все активные коды заявки.
	RevokeAll(ctx context.Context, claimID string, at time.Time) error
	// Consume гасит код; ok=false, если его успели погасить или отозвать.
	Consume(ctx context.Context, id string, at time.Time) (ok bool, err error)
}

type handoverCodeRepo struct {
	db *gorm.DB
}

// NewHandoverCodeRepository создаёт реализацию репозитория для HandoverCode.
func NewHandoverCodeRepository(db *gorm.DB) HandoverCodeRepository {
	return &handoverCodeRepo{db: db}
}

func (r *handoverCodeRepo) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.HandoverCode{}).
		Where("consumed_at IS NULL AND revoked_at IS NULL")
}

func (r *handoverCodeRepo) Create(ctx context.Context, c *model.HandoverCode) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(c).Error, "handover_codes: create failed")
}

func (r *handoverCodeRepo) GetActive(ctx context.Context, claimID string) (*model.HandoverCode, error) {
	c, err := latest(r.active(ctx).Where("claim_id = ?", claimID))
	return c, errors.Wrap(err, "handover_codes: get active failed")
}

func (r *handoverCodeRepo) Latest(ctx context.Context, claimID string) (*model.HandoverCode, error) {
	c, err := latest(r.db.WithContext(ctx).Where("claim_id = ?", claimID))
	return c, errors.Wrap(err, "handover_codes: get latest failed")
}

func latest(q *gorm.DB) (*model.HandoverCode, error) {
	var out []model.HandoverCode
	if err := q.Order("issued_at DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *handoverCodeRepo) RecordFailure(ctx context.Context, id string) (int, error) {
	err := r.db.WithContext(ctx).Model(&model.HandoverCode{}).
		Where("id = ?", id).
		Update("failed_attempts", gorm.Expr("failed_attempts + 1")).Error
	if err != nil {
		return 0, errors.Wrap(err, "handover_codes: record failure failed")
	}
	var c model.HandoverCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return 0, errors.Wrap(err, "handover_codes: reload failed")
	}
	return c.FailedAttempts, nil
}

func (r *handoverCodeRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	err := r.active(ctx).Where("id = ?", id).Update("revoked_at", at).Error
	return errors.Wrap(err, "handover_codes: revoke failed")
}

func (r *handoverCodeRepo) RevokeAll(ctx context.Context, claimID string, at time.Time) error {
	err := r.active(ctx).Where("claim_id = ?", claimID).Update("revoked_at", at).Error
	return errors.Wrap(err, "handover_codes: revoke all failed")
}

func (r *handoverCodeRepo) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	tx := r.active(ctx).Where("id = ?", id).Update("consumed_at", at)
	if tx.Error != nil {
		return false, errors.Wrap(tx.Error, "handover_codes: consume failed")
	}
	return tx.RowsAffected == 1, nil
}

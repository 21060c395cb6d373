package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"FindIt/internal/model"
)

// ItemRepository: доступ к найденным вещам.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	// GetByID оборачивает gorm.ErrRecordNotFound, если вещи нет.
	GetByID(ctx context.Context, id string) (*model.Item, error)
	ListByFinder(ctx context.Context, finderID int64) ([]model.Item, error)
	MarkRecovered(ctx context.Context, id string) error
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(item).Error, "items: create failed")
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, errors.Wrap(err, "items: get failed")
	}
	return &it, nil
}

func (r *itemRepo) ListByFinder(ctx context.Context, finderID int64) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Where("finder_id = ?", finderID).Order("created_at DESC").Find(&items).Error
	return items, errors.Wrap(err, "items: list failed")
}

func (r *itemRepo) MarkRecovered(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Update("status", model.ItemRecovered).Error
	return errors.Wrap(err, "items: mark recovered failed")
}

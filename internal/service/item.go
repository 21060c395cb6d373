package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"FindIt/internal/core/claim"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// ItemService: публикация найденных вещей.
type ItemService struct {
	repo   repo.ItemRepository
	logger *zap.SugaredLogger
}

func NewItemService(r repo.ItemRepository, logger *zap.SugaredLogger) *ItemService {
	return &ItemService{repo: r, logger: logger}
}

// ReportInput: данные о найденной вещи.
type ReportInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Report публикует вещь от имени нашедшего.
func (s *ItemService) Report(ctx context.Context, finderID int64, in ReportInput) (*model.Item, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", claim.ErrValidation)
	}
	it := &model.Item{
		ID:          uuid.NewString(),
		FinderID:    finderID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Status:      model.ItemFound,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Infow("item reported", "item_id", it.ID, "finder_id", finderID)
	return it, nil
}

// Get возвращает вещь или claim.ErrItemNotFound.
func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, claim.ErrItemNotFound
	}
	return it, err
}

// ListMine возвращает вещи, опубликованные пользователем.
func (s *ItemService) ListMine(ctx context.Context, finderID int64) ([]model.Item, error) {
	return s.repo.ListByFinder(ctx, finderID)
}

package repo

import (
	"context"

	"gorm.io/gorm"
)

// Store объединяет репозитории и позволяет выполнить их в одной транзакции.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	Claims() ClaimRepository
	Messages() MessageRepository
	Codes() HandoverCodeRepository

	// InTx выполняет fn в транзакции; ошибка fn откатывает все изменения.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore создаёт Store поверх gorm.DB.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository         { return NewUserRepository(s.db) }
func (s *gormStore) Items() ItemRepository         { return NewItemRepository(s.db) }
func (s *gormStore) Claims() ClaimRepository       { return NewClaimRepository(s.db) }
func (s *gormStore) Messages() MessageRepository   { return NewMessageRepository(s.db) }
func (s *gormStore) Codes() HandoverCodeRepository { return NewHandoverCodeRepository(s.db) }

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

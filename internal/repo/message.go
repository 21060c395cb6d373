package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FindIt/internal/model"
)

// MessageRepository: лента сообщений заявки (только дополнение).
type MessageRepository interface {
	// Append назначает следующий Seq в пределах заявки и сохраняет сообщение.
	// Должен вызываться внутри транзакции: строка заявки блокируется
	// (SELECT ... FOR UPDATE) до подсчёта MAX(seq), так что запись в одну ленту
	// из разных транзакций идёт по очереди. SQLite блокировку строк не знает,
	// там запись и так сериализуется одним соединением.
	Append(ctx context.Context, m *model.Message) error
	// List возвращает сообщения с seq > afterSeq по возрастанию seq.
	List(ctx context.Context, claimID string, afterSeq int64) ([]model.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository создаёт реализацию репозитория для Message.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Append(ctx context.Context, m *model.Message) error {
	var locked []model.Claim
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		Where("id = ?", m.ClaimID).
		Find(&locked).Error
	if err != nil {
		return errors.Wrap(err, "messages: lock claim failed")
	}

	var last int64
	err = r.db.WithContext(ctx).Model(&model.Message{}).
		Where("claim_id = ?", m.ClaimID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return errors.Wrap(err, "messages: next seq failed")
	}
	m.Seq = last + 1
	return errors.Wrap(r.db.WithContext(ctx).Create(m).Error, "messages: append failed")
}

func (r *messageRepo) List(ctx context.Context, claimID string, afterSeq int64) ([]model.Message, error) {
	var out []model.Message
	err := r.db.WithContext(ctx).
		Where("claim_id = ? AND seq > ?", claimID, afterSeq).
		Order("seq").
		Find(&out).Error
	return out, errors.Wrap(err, "messages: list failed")
}

package repo

import (
	"FindIt/internal/cli/model"
	"FindIt/internal/core/thread"
)

// ThreadRepository: локальная копия заявок и их лент.
type ThreadRepository interface {
	// SaveClaims обновляет (или добавляет) заявки из списка сервера.
	SaveClaims(claims []model.Claim) error
	ListClaims() ([]model.Claim, error)
	GetClaim(claimID string) (*model.Claim, error)

	// AppendEntries сохраняет сообщения; уже известные seq пропускаются.
	AppendEntries(claimID string, entries []thread.Entry) (int, error)
	Entries(claimID string) ([]thread.Entry, error)
	// MaxSeq: наибольший сохранённый seq ленты (0, если пусто).
	MaxSeq(claimID string) (int64, error)
}

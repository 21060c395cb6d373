package model

import (
	"time"

	"gorm.io/datatypes"

	"FindIt/internal/core/thread"
)

// Message — запись в ленте заявки. Лента только дополняется, порядок задаёт Seq.
type Message struct {
	ID       string             `gorm:"primaryKey;size:36"`
	ClaimID  string             `gorm:"size:36;not null;uniqueIndex:idx_message_claim_seq,priority:1"`
	Seq      int64              `gorm:"not null;uniqueIndex:idx_message_claim_seq,priority:2"`
	SenderID int64              `gorm:"not null;default:0"` // 0 — системное сообщение
	Type     thread.MessageType `gorm:"column:message_type;size:32;not null"`
	Content  string             `gorm:"type:text"`
	Payload  datatypes.JSON

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Entry decodes the stored payload into its typed variant.
func (m Message) Entry() (thread.Entry, error) {
	p, err := thread.Decode(m.Type, m.Content, []byte(m.Payload))
	if err != nil {
		return thread.Entry{}, err
	}
	return thread.Entry{
		ID:        m.ID,
		Seq:       m.Seq,
		SenderID:  m.SenderID,
		Type:      m.Type,
		Content:   m.Content,
		Payload:   p,
		CreatedAt: m.CreatedAt,
	}, nil
}

// Entries decodes a slice of messages, stopping at the first bad payload.
func Entries(msgs []Message) ([]thread.Entry, error) {
	out := make([]thread.Entry, 0, len(msgs))
	for _, m := range msgs {
		e, err := m.Entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

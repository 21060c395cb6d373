package model

import (
	"encoding/json"
	"time"

	"FindIt/internal/core/thread"
)

// WireEntry: сообщение ленты в том виде, в каком его отдаёт сервер.
// Payload остаётся сырым до разбора по типу.
type WireEntry struct {
	ID        string             `json:"id"`
	Seq       int64              `json:"seq"`
	SenderID  int64              `json:"sender_id"`
	Type      thread.MessageType `json:"message_type"`
	Content   string             `json:"content"`
	Payload   json.RawMessage    `json:"payload"`
	CreatedAt time.Time          `json:"created_at"`
}

// Decode разбирает payload по message_type.
func (w WireEntry) Decode() (thread.Entry, error) {
	p, err := thread.Decode(w.Type, w.Content, w.Payload)
	if err != nil {
		return thread.Entry{}, err
	}
	return thread.Entry{
		ID:        w.ID,
		Seq:       w.Seq,
		SenderID:  w.SenderID,
		Type:      w.Type,
		Content:   w.Content,
		Payload:   p,
		CreatedAt: w.CreatedAt,
	}, nil
}

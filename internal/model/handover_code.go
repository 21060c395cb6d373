package model

import (
	"time"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/handover"
)

// HandoverCode — одноразовый код передачи вещи. Активен, пока не погашен,
// не отозван и не истёк.
type HandoverCode struct {
	ID             string     `gorm:"primaryKey;size:36"`
	ClaimID        string     `gorm:"size:36;not null;index"`
	Owner          claim.Role `gorm:"size:16;not null"`
	Code           string     `gorm:"size:8;not null" json:"-"`
	IssuedAt       time.Time  `gorm:"not null"`
	ExpiresAt      time.Time  `gorm:"not null"`
	FailedAttempts int        `gorm:"not null;default:0"`
	ConsumedAt     *time.Time
	RevokedAt      *time.Time
}

// Ticket converts the record into the value checked by handover.Check.
func (c HandoverCode) Ticket() handover.Ticket {
	return handover.Ticket{
		Code:           c.Code,
		IssuedAt:       c.IssuedAt,
		ExpiresAt:      c.ExpiresAt,
		FailedAttempts: c.FailedAttempts,
	}
}

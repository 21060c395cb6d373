package model

import (
	"time"

	"FindIt/internal/core/claim"
)

// Claim: заявка, как её видит клиент (ответ /api/claims).
type Claim struct {
	ID             string             `json:"claim_id"`
	ItemID         string             `json:"item_id"`
	FinderID       int64              `json:"finder_id"`
	ClaimantID     int64              `json:"claimant_id"`
	Status         claim.Status       `json:"status"`
	LegacyStatus   claim.LegacyStatus `json:"legacy_status"`
	Role           claim.Role         `json:"role,omitempty"`
	ItemTitle      string             `json:"item_title,omitempty"`
	OtherPartyName string             `json:"other_party_name,omitempty"`
	LastMessage    string             `json:"last_message,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// CodeGrant: выданный нашедшему код передачи.
type CodeGrant struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Reused    bool      `json:"reused"`
}

// User: текущий пользователь.
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name,omitempty"`
}

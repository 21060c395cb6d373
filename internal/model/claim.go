package model

import (
	"time"

	"FindIt/internal/core/claim"
)

// Claim — заявка на возврат вещи. Статус меняется только через сервис.
type Claim struct {
	ID         string       `gorm:"primaryKey;size:36"`
	ItemID     string       `gorm:"size:36;not null;index:idx_claim_item_claimant"`
	FinderID   int64        `gorm:"not null;index"`
	ClaimantID int64        `gorm:"not null;index;index:idx_claim_item_claimant"`
	Status     claim.Status `gorm:"size:32;not null;index"`
	Proof      string       `gorm:"type:text"`

	Item *Item `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Role resolves the caller against the claim parties.
func (c Claim) Role(userID int64) claim.Role {
	return claim.ResolveRole(c.FinderID, c.ClaimantID, userID)
}

// ClaimSummary is a claim as listed for one of its parties.
type ClaimSummary struct {
	Claim
	ItemTitle      string
	OtherPartyName string
	LastMessage    string
}

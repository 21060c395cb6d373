package model

import "time"

// ItemStatus — состояние найденной вещи.
type ItemStatus string

const (
	ItemFound     ItemStatus = "found"
	ItemRecovered ItemStatus = "recovered"
)

// Item — найденная вещь, опубликованная нашедшим.
type Item struct {
	ID       string `gorm:"primaryKey;size:36"`
	FinderID int64  `gorm:"not null;index"` // ссылка на users.id

	Finder *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	Location    string     `gorm:"size:255"`
	Status      ItemStatus `gorm:"size:32;not null;default:found;index"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package model

import "time"

// User — зарегистрированный пользователь: и нашедший, и заявитель.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"uniqueIndex;size:255;not null"`
	Password string `gorm:"not null"` // bcrypt hash
	FullName string `gorm:"size:255"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DisplayName returns the name shown to the other party.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Login
}

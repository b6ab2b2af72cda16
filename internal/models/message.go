// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a chat message inside an accepted match.
type Message struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	MatchID  uint       `gorm:"not null;index:idx_messages_match_created" json:"match_id"`
	SenderID uint       `gorm:"not null;index" json:"sender_id"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	IsRead   bool       `gorm:"default:false" json:"is_read"`
	ReadAt   *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time      `gorm:"index:idx_messages_match_created" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

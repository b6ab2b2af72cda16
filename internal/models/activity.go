// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityStatus represents the lifecycle state of an in-person activity.
type ActivityStatus string

const (
	ActivityStatusOpen      ActivityStatus = "open"
	ActivityStatusFull      ActivityStatus = "full"
	ActivityStatusCancelled ActivityStatus = "cancelled"
	ActivityStatusCompleted ActivityStatus = "completed"
)

// ParticipantStatus represents a participant's standing in an activity.
type ParticipantStatus string

const (
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
	ParticipantStatusCancelled ParticipantStatus = "cancelled"
	ParticipantStatusCompleted ParticipantStatus = "completed"
)

// Activity is a scheduled in-person meetup around a goal category.
type Activity struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CreatorID   uint         `gorm:"not null;index" json:"creator_id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Category    GoalCategory `gorm:"type:varchar(20);not null;index" json:"category"`

	LocationName    string   `gorm:"not null" json:"location_name"`
	LocationAddress string   `json:"location_address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`

	ScheduledAt     time.Time `gorm:"index" json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	// MaxParticipants of 0 means unlimited.
	MaxParticipants     int            `gorm:"default:0" json:"max_participants"`
	CurrentParticipants int            `gorm:"default:0" json:"current_participants"`
	Status              ActivityStatus `gorm:"type:varchar(12);default:'open';index" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator      User                  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Participants []ActivityParticipant `gorm:"foreignKey:ActivityID" json:"participants,omitempty"`
}

// HasLocation reports whether the activity has a geographic point.
func (a *Activity) HasLocation() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// ActivityParticipant links a user to an activity they joined.
type ActivityParticipant struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActivityID uint              `gorm:"not null;uniqueIndex:idx_activity_participant" json:"activity_id"`
	UserID     uint              `gorm:"not null;uniqueIndex:idx_activity_participant" json:"user_id"`
	Status     ParticipantStatus `gorm:"type:varchar(12);default:'confirmed'" json:"status"`
	JoinedAt   time.Time         `json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

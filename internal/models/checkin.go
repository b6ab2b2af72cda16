// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// CheckinMood captures how the user felt about a check-in.
type CheckinMood string

const (
	MoodGreat      CheckinMood = "great"
	MoodGood       CheckinMood = "good"
	MoodOkay       CheckinMood = "okay"
	MoodStruggling CheckinMood = "struggling"
)

// ParseCheckinMood returns the mood for s, reporting whether it is valid.
func ParseCheckinMood(s string) (CheckinMood, bool) {
	switch CheckinMood(s) {
	case MoodGreat, MoodGood, MoodOkay, MoodStruggling:
		return CheckinMood(s), true
	}
	return "", false
}

// Checkin records one completion of a goal. Creating a check-in updates the
// owning goal's streak counters and the user's aggregates in one transaction.
type Checkin struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	GoalID uint        `gorm:"not null;index:idx_checkins_goal_completed" json:"goal_id"`
	UserID uint        `gorm:"not null;index" json:"user_id"`
	Note   string      `gorm:"type:text" json:"note"`
	Mood   CheckinMood `gorm:"type:varchar(12)" json:"mood"`

	CompletedAt time.Time `gorm:"index:idx_checkins_goal_completed" json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`

	Goal Goal `gorm:"foreignKey:GoalID" json:"goal,omitempty"`
}

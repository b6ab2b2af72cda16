// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a member of the Aktiv application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`

	LocationCity    string `json:"location_city"`
	LocationState   string `json:"location_state"`
	LocationCountry string `json:"location_country"`
	// Latitude/Longitude are nil until the user shares a location.
	// In-person matching requires both to be set.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// AccountabilityMode marks the user as eligible for virtual partner matching.
	AccountabilityMode bool    `gorm:"default:true;index" json:"accountability_mode"`
	MaxDistanceKm      float64 `gorm:"default:50" json:"max_distance_km"`
	// PreferredCategories is a comma-separated list of goal categories.
	// Advisory only; the ranker does not filter on it.
	PreferredCategories string `json:"preferred_categories"`

	StreakDays          int `gorm:"default:0" json:"streak_days"`
	TotalGoalsCompleted int `gorm:"default:0" json:"total_goals_completed"`
	TotalCheckins       int `gorm:"default:0" json:"total_checkins"`

	IsAdmin bool `gorm:"default:false" json:"is_admin"`

	LastActiveAt time.Time      `gorm:"index" json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Goals []Goal `gorm:"foreignKey:UserID" json:"goals,omitempty"`
}

// HasLocation reports whether the user has shared a geographic point.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// PreferredCategoryList returns the parsed preferred categories.
func (u *User) PreferredCategoryList() []GoalCategory {
	if u.PreferredCategories == "" {
		return nil
	}
	var out []GoalCategory
	for _, raw := range strings.Split(u.PreferredCategories, ",") {
		if cat, ok := ParseGoalCategory(strings.TrimSpace(raw)); ok {
			out = append(out, cat)
		}
	}
	return out
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// GoalCategory classifies a goal into one of a fixed set of buckets.
type GoalCategory string

const (
	CategoryFitness     GoalCategory = "fitness"
	CategoryNutrition   GoalCategory = "nutrition"
	CategoryLearning    GoalCategory = "learning"
	CategoryReading     GoalCategory = "reading"
	CategoryCreative    GoalCategory = "creative"
	CategoryCareer      GoalCategory = "career"
	CategoryFinance     GoalCategory = "finance"
	CategoryMindfulness GoalCategory = "mindfulness"
	CategorySocial      GoalCategory = "social"
	CategoryOther       GoalCategory = "other"
)

// GoalCategories lists every valid category in display order.
var GoalCategories = []GoalCategory{
	CategoryFitness, CategoryNutrition, CategoryLearning, CategoryReading,
	CategoryCreative, CategoryCareer, CategoryFinance, CategoryMindfulness,
	CategorySocial, CategoryOther,
}

// ParseGoalCategory returns the category for s, reporting whether it is valid.
func ParseGoalCategory(s string) (GoalCategory, bool) {
	for _, c := range GoalCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

const (
	// GoalStatusActive indicates a goal currently being worked on.
	GoalStatusActive GoalStatus = "active"
	// GoalStatusPaused indicates a goal temporarily on hold.
	GoalStatusPaused GoalStatus = "paused"
	// GoalStatusCompleted indicates a finished goal.
	GoalStatusCompleted GoalStatus = "completed"
	// GoalStatusAbandoned indicates a goal the user gave up on.
	GoalStatusAbandoned GoalStatus = "abandoned"
)

// ParseGoalStatus returns the status for s, reporting whether it is valid.
func ParseGoalStatus(s string) (GoalStatus, bool) {
	switch GoalStatus(s) {
	case GoalStatusActive, GoalStatusPaused, GoalStatusCompleted, GoalStatusAbandoned:
		return GoalStatus(s), true
	}
	return "", false
}

// GoalFrequency describes how often a goal expects check-ins.
type GoalFrequency string

const (
	FrequencyDaily   GoalFrequency = "daily"
	FrequencyWeekly  GoalFrequency = "weekly"
	FrequencyMonthly GoalFrequency = "monthly"
	FrequencyCustom  GoalFrequency = "custom"
)

// ParseGoalFrequency returns the frequency for s, reporting whether it is valid.
func ParseGoalFrequency(s string) (GoalFrequency, bool) {
	switch GoalFrequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return GoalFrequency(s), true
	}
	return "", false
}

// Goal represents a trackable habit belonging to one user.
// Only active, public goals are visible to the matching engine.
type Goal struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index:idx_goals_user_visibility" json:"user_id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Category    GoalCategory  `gorm:"type:varchar(20);not null;index" json:"category"`
	Frequency   GoalFrequency `gorm:"type:varchar(10);default:'daily'" json:"frequency"`
	// FrequencyCount is how many check-ins per frequency period (e.g. 3x weekly).
	FrequencyCount int        `gorm:"default:1" json:"frequency_count"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         GoalStatus `gorm:"type:varchar(20);default:'active';index:idx_goals_user_visibility" json:"status"`
	IsPublic       bool       `gorm:"default:true;index:idx_goals_user_visibility" json:"is_public"`

	// Counters maintained by the check-in flow, never by the matcher.
	TotalCheckins int `gorm:"default:0" json:"total_checkins"`
	CurrentStreak int `gorm:"default:0" json:"current_streak"`
	LongestStreak int `gorm:"default:0" json:"longest_streak"`

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// MatchVisible reports whether the goal feeds the matching engine.
func (g *Goal) MatchVisible() bool {
	return g.Status == GoalStatusActive && g.IsPublic
}

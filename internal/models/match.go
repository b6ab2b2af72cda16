// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchStatus represents the status of a match edge between two users.
type MatchStatus string

const (
	// MatchStatusPending indicates a connection request awaiting a response.
	MatchStatusPending MatchStatus = "pending"
	// MatchStatusAccepted indicates an active partnership.
	MatchStatusAccepted MatchStatus = "accepted"
	// MatchStatusRejected indicates a declined request. Terminal: the pair is
	// never re-suggested.
	MatchStatusRejected MatchStatus = "rejected"
	// MatchStatusBlocked indicates an ended or blocked partnership. Terminal.
	MatchStatusBlocked MatchStatus = "blocked"
)

// CanTransition reports whether the status may move to next.
// pending -> accepted|rejected, accepted -> blocked. Nothing is reversible.
func (s MatchStatus) CanTransition(next MatchStatus) bool {
	switch s {
	case MatchStatusPending:
		return next == MatchStatusAccepted || next == MatchStatusRejected
	case MatchStatusAccepted:
		return next == MatchStatusBlocked
	}
	return false
}

// Match represents a connection edge between exactly two distinct users.
// The pair is stored in canonical order (UserAID < UserBID) so the composite
// unique index guarantees at most one row per unordered pair regardless of
// who initiated. InitiatorID records the requesting side so only the receiver
// may accept or reject.
type Match struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserAID     uint        `gorm:"not null;uniqueIndex:idx_match_pair" json:"user_a_id"`
	UserBID     uint        `gorm:"not null;uniqueIndex:idx_match_pair" json:"user_b_id"`
	InitiatorID uint        `gorm:"not null" json:"initiator_id"`
	Status      MatchStatus `gorm:"type:varchar(20);default:'pending';index:idx_matches_status" json:"status"`
	IsInPerson  bool        `gorm:"default:false" json:"is_in_person"`
	// ScoreAtCreation is the compatibility score computed when the edge was
	// proposed. Immutable snapshot.
	ScoreAtCreation float64 `json:"score_at_creation"`

	MatchedAt         time.Time  `json:"matched_at"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	LastInteractionAt time.Time  `json:"last_interaction_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserA User `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserB User `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// BeforeCreate enforces the canonical pair ordering and stamps MatchedAt.
func (m *Match) BeforeCreate(_ *gorm.DB) error {
	if m.UserAID > m.UserBID {
		m.UserAID, m.UserBID = m.UserBID, m.UserAID
	}
	if m.MatchedAt.IsZero() {
		m.MatchedAt = time.Now()
	}
	if m.LastInteractionAt.IsZero() {
		m.LastInteractionAt = m.MatchedAt
	}
	return nil
}

// OtherUser returns the counterpart of userID in the pair.
func (m *Match) OtherUser(userID uint) uint {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Involves reports whether userID is one of the two parties.
func (m *Match) Involves(userID uint) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// NormalizePair returns the two IDs in canonical (ascending) order.
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aktiv/internal/cache"
	"aktiv/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateMatch is returned when a match edge already exists for the pair.
// Create resolves it internally by returning the surviving row; callers only
// see it if the re-fetch also fails.
var ErrDuplicateMatch = errors.New("match already exists for pair")

// MatchRepository defines persistence operations for match edges.
type MatchRepository interface {
	// Create inserts a new pending edge. If a concurrent request already
	// created the row for this pair, the existing row is returned instead
	// (first writer wins).
	Create(ctx context.Context, match *models.Match) (*models.Match, error)
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	// GetByPair returns the edge between two users in any status, or nil.
	GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Match, error)
	ListForUser(ctx context.Context, userID uint, status models.MatchStatus) ([]models.Match, error)
	GetPendingReceived(ctx context.Context, userID uint) ([]models.Match, error)
	GetPendingSent(ctx context.Context, userID uint) ([]models.Match, error)
	// UpdateStatus transitions the edge, enforcing the status machine.
	UpdateStatus(ctx context.Context, match *models.Match, next models.MatchStatus) error
	TouchInteraction(ctx context.Context, matchID uint) error
	// GetPartnerIDs returns every user that shares an edge with userID,
	// regardless of status. This is the ranking exclusion set.
	GetPartnerIDs(ctx context.Context, userID uint) (map[uint]struct{}, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository returns a new MatchRepository implementation.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) (*models.Match, error) {
	err := r.db.WithContext(ctx).Create(match).Error
	if err == nil {
		r.invalidatePair(ctx, match)
		return match, nil
	}
	if !isUniqueConstraintError(err) {
		return nil, models.NewInternalError(err)
	}

	// Lost the race against a concurrent request for the same pair.
	existing, ferr := r.GetByPair(ctx, match.UserAID, match.UserBID)
	if ferr != nil {
		return nil, ferr
	}
	if existing == nil {
		return nil, models.NewInternalError(fmt.Errorf("%w: row vanished after conflict", ErrDuplicateMatch))
	}
	return existing, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	if err := readDB(r.db).WithContext(ctx).
		Preload("UserA").Preload("UserB").
		First(&match, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Match", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &match, nil
}

func (r *matchRepository) GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Match, error) {
	a, b := models.NormalizePair(userID1, userID2)

	var match models.Match
	if err := readDB(r.db).WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &match, nil
}

func (r *matchRepository) ListForUser(ctx context.Context, userID uint, status models.MatchStatus) ([]models.Match, error) {
	var matches []models.Match
	q := readDB(r.db).WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").Preload("UserB")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("last_interaction_at DESC").Find(&matches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return matches, nil
}

func (r *matchRepository) GetPendingReceived(ctx context.Context, userID uint) ([]models.Match, error) {
	var matches []models.Match
	if err := readDB(r.db).WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND initiator_id != ? AND status = ?",
			userID, userID, userID, models.MatchStatusPending).
		Preload("UserA").Preload("UserB").
		Order("matched_at DESC").
		Find(&matches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return matches, nil
}

func (r *matchRepository) GetPendingSent(ctx context.Context, userID uint) ([]models.Match, error) {
	var matches []models.Match
	if err := readDB(r.db).WithContext(ctx).
		Where("initiator_id = ? AND status = ?", userID, models.MatchStatusPending).
		Preload("UserA").Preload("UserB").
		Order("matched_at DESC").
		Find(&matches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return matches, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, match *models.Match, next models.MatchStatus) error {
	if !match.Status.CanTransition(next) {
		return models.NewValidationError(fmt.Sprintf("cannot move match from %s to %s", match.Status, next))
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              next,
		"last_interaction_at": now,
	}
	if next == models.MatchStatusAccepted {
		updates["accepted_at"] = now
	}

	// Guard the transition in SQL too so a concurrent writer cannot bypass
	// the state machine.
	res := r.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", match.ID, match.Status).
		Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError("match was updated concurrently, re-fetch and retry")
	}

	match.Status = next
	match.LastInteractionAt = now
	if next == models.MatchStatusAccepted {
		match.AcceptedAt = &now
	}
	r.invalidatePair(ctx, match)
	return nil
}

func (r *matchRepository) TouchInteraction(ctx context.Context, matchID uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ?", matchID).
		Update("last_interaction_at", time.Now()).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *matchRepository) GetPartnerIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	var matches []models.Match
	if err := readDB(r.db).WithContext(ctx).
		Select("user_a_id", "user_b_id").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&matches).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	partners := make(map[uint]struct{}, len(matches))
	for _, m := range matches {
		partners[m.OtherUser(userID)] = struct{}{}
	}
	return partners, nil
}

func (r *matchRepository) invalidatePair(ctx context.Context, match *models.Match) {
	cache.InvalidateSuggestions(ctx, match.UserAID)
	cache.InvalidateSuggestions(ctx, match.UserBID)
}

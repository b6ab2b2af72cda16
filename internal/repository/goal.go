package repository

import (
	"context"
	"errors"

	"aktiv/internal/cache"
	"aktiv/internal/models"

	"gorm.io/gorm"
)

// GoalRepository defines persistence operations for goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByID(ctx context.Context, id uint) (*models.Goal, error)
	ListByUser(ctx context.Context, userID uint, status models.GoalStatus) ([]models.Goal, error)
	ListPublicActiveByUser(ctx context.Context, userID uint, limit int) ([]models.Goal, error)
	// ListPublicActiveByUsers returns match-visible goals for all users in one
	// read, capped per user, grouped by owner.
	ListPublicActiveByUsers(ctx context.Context, userIDs []uint, perUser int) (map[uint][]models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id uint) error
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository returns a new GoalRepository implementation.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGoals(ctx, goal.UserID)
	return nil
}

func (r *goalRepository) GetByID(ctx context.Context, id uint) (*models.Goal, error) {
	var goal models.Goal
	if err := readDB(r.db).WithContext(ctx).First(&goal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Goal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uint, status models.GoalStatus) ([]models.Goal, error) {
	var goals []models.Goal
	q := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return goals, nil
}

func (r *goalRepository) ListPublicActiveByUser(ctx context.Context, userID uint, limit int) ([]models.Goal, error) {
	var goals []models.Goal
	q := readDB(r.db).WithContext(ctx).
		Where("user_id = ? AND status = ? AND is_public = ?", userID, models.GoalStatusActive, true).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return goals, nil
}

func (r *goalRepository) ListPublicActiveByUsers(ctx context.Context, userIDs []uint, perUser int) (map[uint][]models.Goal, error) {
	out := make(map[uint][]models.Goal, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var goals []models.Goal
	if err := readDB(r.db).WithContext(ctx).
		Where("user_id IN ? AND status = ? AND is_public = ?",
			userIDs, models.GoalStatusActive, true).
		Order("user_id, created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, g := range goals {
		if perUser > 0 && len(out[g.UserID]) >= perUser {
			continue
		}
		out[g.UserID] = append(out[g.UserID], g)
	}
	return out, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Save(goal).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGoals(ctx, goal.UserID)
	return nil
}

func (r *goalRepository) Delete(ctx context.Context, id uint) error {
	var goal models.Goal
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Goal", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&goal).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGoals(ctx, goal.UserID)
	return nil
}

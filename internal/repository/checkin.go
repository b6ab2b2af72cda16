package repository

import (
	"context"
	"errors"
	"time"

	"aktiv/internal/models"

	"gorm.io/gorm"
)

// CheckinRepository defines persistence operations for goal check-ins.
type CheckinRepository interface {
	// Create inserts the check-in and updates the goal's streak counters and
	// the owner's aggregates in one transaction.
	Create(ctx context.Context, checkin *models.Checkin) error
	ListByGoal(ctx context.Context, goalID uint, limit, offset int) ([]models.Checkin, error)
	ListByUser(ctx context.Context, userID uint, since time.Time) ([]models.Checkin, error)
}

type checkinRepository struct {
	db *gorm.DB
}

// NewCheckinRepository returns a new CheckinRepository implementation.
func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

func (r *checkinRepository) Create(ctx context.Context, checkin *models.Checkin) error {
	if checkin.CompletedAt.IsZero() {
		checkin.CompletedAt = time.Now()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var goal models.Goal
		if err := tx.First(&goal, checkin.GoalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Goal", checkin.GoalID)
			}
			return err
		}
		if goal.UserID != checkin.UserID {
			return models.NewUnauthorizedError("goal belongs to another user")
		}
		if goal.Status != models.GoalStatusActive {
			return models.NewValidationError("check-ins are only allowed on active goals")
		}

		var last models.Checkin
		hasPrev := true
		if err := tx.Where("goal_id = ?", goal.ID).
			Order("completed_at DESC").
			First(&last).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hasPrev = false
		}

		if err := tx.Create(checkin).Error; err != nil {
			return err
		}

		goal.TotalCheckins++
		switch {
		case !hasPrev:
			goal.CurrentStreak = 1
		case extendsStreak(last.CompletedAt, checkin.CompletedAt):
			goal.CurrentStreak++
		case sameDay(last.CompletedAt, checkin.CompletedAt):
			// Multiple check-ins in one day count once toward the streak.
		default:
			goal.CurrentStreak = 1
		}
		if goal.CurrentStreak > goal.LongestStreak {
			goal.LongestStreak = goal.CurrentStreak
		}
		if err := tx.Save(&goal).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", checkin.UserID).
			Updates(map[string]interface{}{
				"total_checkins": gorm.Expr("total_checkins + 1"),
				"last_active_at": time.Now(),
			}).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}

// extendsStreak reports whether next lands on the calendar day after prev.
func extendsStreak(prev, next time.Time) bool {
	return sameDay(prev.AddDate(0, 0, 1), next)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r *checkinRepository) ListByGoal(ctx context.Context, goalID uint, limit, offset int) ([]models.Checkin, error) {
	if limit <= 0 {
		limit = 50
	}
	var checkins []models.Checkin
	if err := readDB(r.db).WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("completed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&checkins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return checkins, nil
}

func (r *checkinRepository) ListByUser(ctx context.Context, userID uint, since time.Time) ([]models.Checkin, error) {
	var checkins []models.Checkin
	q := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("completed_at >= ?", since)
	}
	if err := q.Order("completed_at DESC").Find(&checkins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return checkins, nil
}

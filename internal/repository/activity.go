package repository

import (
	"context"
	"errors"
	"time"

	"aktiv/internal/models"

	"gorm.io/gorm"
)

// ErrActivityFull is returned when joining an activity at capacity.
var ErrActivityFull = errors.New("activity is full")

// ActivityRepository defines persistence operations for in-person activities.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	ListUpcoming(ctx context.Context, category models.GoalCategory, limit, offset int) ([]models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	// Join adds the user as a confirmed participant, enforcing capacity inside
	// a transaction.
	Join(ctx context.Context, activityID, userID uint) error
	Leave(ctx context.Context, activityID, userID uint) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a new ActivityRepository implementation.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := readDB(r.db).WithContext(ctx).
		Preload("Creator").
		Preload("Participants").
		Preload("Participants.User").
		First(&activity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Activity", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &activity, nil
}

func (r *activityRepository) ListUpcoming(ctx context.Context, category models.GoalCategory, limit, offset int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	var activities []models.Activity
	q := readDB(r.db).WithContext(ctx).
		Where("status = ? AND scheduled_at > ?", models.ActivityStatusOpen, time.Now()).
		Preload("Creator")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("scheduled_at ASC").Limit(limit).Offset(offset).Find(&activities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}

func (r *activityRepository) Update(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Save(activity).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) Join(ctx context.Context, activityID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		if err := tx.First(&activity, activityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Activity", activityID)
			}
			return err
		}
		if activity.Status != models.ActivityStatusOpen {
			return models.NewValidationError("activity is not open for joining")
		}
		if activity.MaxParticipants > 0 && activity.CurrentParticipants >= activity.MaxParticipants {
			return models.NewValidationError(ErrActivityFull.Error())
		}

		participant := models.ActivityParticipant{
			ActivityID: activityID,
			UserID:     userID,
			Status:     models.ParticipantStatusConfirmed,
			JoinedAt:   time.Now(),
		}
		if err := tx.Create(&participant).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewValidationError("already joined this activity")
			}
			return err
		}

		activity.CurrentParticipants++
		if activity.MaxParticipants > 0 && activity.CurrentParticipants >= activity.MaxParticipants {
			activity.Status = models.ActivityStatusFull
		}
		return tx.Save(&activity).Error
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

func (r *activityRepository) Leave(ctx context.Context, activityID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("activity_id = ? AND user_id = ?", activityID, userID).
			Delete(&models.ActivityParticipant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("ActivityParticipant", activityID)
		}

		if err := tx.Model(&models.Activity{}).
			Where("id = ?", activityID).
			Update("current_participants", gorm.Expr("current_participants - 1")).Error; err != nil {
			return err
		}

		// A full activity regains a slot; cancelled/completed stay terminal.
		return tx.Model(&models.Activity{}).
			Where("id = ? AND status = ?", activityID, models.ActivityStatusFull).
			Update("status", models.ActivityStatusOpen).Error
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

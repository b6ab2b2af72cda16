package service

import (
	"context"
	"time"

	"aktiv/internal/matching"
	"aktiv/internal/models"
	"aktiv/internal/repository"
)

// ActivityService provides in-person activity business logic.
type ActivityService struct {
	activityRepo repository.ActivityRepository
	userRepo     repository.UserRepository
}

// CreateActivityInput carries the fields for a new activity.
type CreateActivityInput struct {
	CreatorID       uint
	Title           string
	Description     string
	Category        string
	LocationName    string
	LocationAddress string
	Latitude        *float64
	Longitude       *float64
	ScheduledAt     time.Time
	DurationMinutes int
	MaxParticipants int
}

// NewActivityService returns a new ActivityService.
func NewActivityService(activityRepo repository.ActivityRepository, userRepo repository.UserRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, userRepo: userRepo}
}

func (s *ActivityService) CreateActivity(ctx context.Context, in CreateActivityInput) (*models.Activity, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Activity title is required")
	}
	if in.LocationName == "" {
		return nil, models.NewValidationError("Activity location is required")
	}
	category, ok := models.ParseGoalCategory(in.Category)
	if !ok {
		return nil, models.NewValidationError("Unknown goal category: " + in.Category)
	}
	if in.ScheduledAt.Before(time.Now()) {
		return nil, models.NewValidationError("Activity must be scheduled in the future")
	}
	if in.MaxParticipants < 0 {
		return nil, models.NewValidationError("Max participants cannot be negative")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, models.NewValidationError("latitude and longitude must be provided together")
	}

	activity := &models.Activity{
		CreatorID:       in.CreatorID,
		Title:           in.Title,
		Description:     in.Description,
		Category:        category,
		LocationName:    in.LocationName,
		LocationAddress: in.LocationAddress,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: in.DurationMinutes,
		MaxParticipants: in.MaxParticipants,
		Status:          models.ActivityStatusOpen,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, err
	}

	// The creator participates in their own activity.
	if err := s.activityRepo.Join(ctx, activity.ID, in.CreatorID); err != nil {
		return nil, err
	}
	return s.activityRepo.GetByID(ctx, activity.ID)
}

func (s *ActivityService) GetActivity(ctx context.Context, id uint) (*models.Activity, error) {
	return s.activityRepo.GetByID(ctx, id)
}

// NearFilter narrows the upcoming list to activities within RadiusKm of a point.
type NearFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

func (s *ActivityService) ListUpcoming(ctx context.Context, category string, near *NearFilter, limit, offset int) ([]models.Activity, error) {
	var filter models.GoalCategory
	if category != "" {
		parsed, ok := models.ParseGoalCategory(category)
		if !ok {
			return nil, models.NewValidationError("Unknown goal category: " + category)
		}
		filter = parsed
	}
	if near == nil {
		return s.activityRepo.ListUpcoming(ctx, filter, limit, offset)
	}
	if near.RadiusKm <= 0 {
		return nil, models.NewValidationError("radius_km must be positive")
	}

	// Distance is computed in memory, so over-fetch to keep the page full
	// after dropping activities outside the radius or without a location.
	window := (offset + limit) * 4
	rows, err := s.activityRepo.ListUpcoming(ctx, filter, window, 0)
	if err != nil {
		return nil, err
	}

	nearby := make([]models.Activity, 0, limit)
	skipped := 0
	for _, a := range rows {
		if !a.HasLocation() {
			continue
		}
		d := matching.Haversine(near.Latitude, near.Longitude, *a.Latitude, *a.Longitude)
		if d > near.RadiusKm {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		nearby = append(nearby, a)
		if len(nearby) == limit {
			break
		}
	}
	return nearby, nil
}

func (s *ActivityService) JoinActivity(ctx context.Context, activityID, userID uint) (*models.Activity, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Join(ctx, activityID, userID); err != nil {
		return nil, err
	}
	return s.activityRepo.GetByID(ctx, activityID)
}

func (s *ActivityService) LeaveActivity(ctx context.Context, activityID, userID uint) error {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return err
	}
	if activity.CreatorID == userID {
		return models.NewValidationError("The creator cannot leave their own activity; cancel it instead")
	}
	return s.activityRepo.Leave(ctx, activityID, userID)
}

// CancelActivity cancels an open or full activity. Creator only.
func (s *ActivityService) CancelActivity(ctx context.Context, activityID, userID uint) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.CreatorID != userID {
		return nil, models.NewUnauthorizedError("Only the creator can cancel an activity")
	}
	switch activity.Status {
	case models.ActivityStatusOpen, models.ActivityStatusFull:
	default:
		return nil, models.NewValidationError("Activity is already finished")
	}

	activity.Status = models.ActivityStatusCancelled
	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

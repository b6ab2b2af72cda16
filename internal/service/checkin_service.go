package service

import (
	"context"
	"time"

	"aktiv/internal/models"
	"aktiv/internal/repository"
)

// CheckinService provides check-in business logic.
type CheckinService struct {
	checkinRepo repository.CheckinRepository
	goalRepo    repository.GoalRepository
}

// CreateCheckinInput carries the fields for a new check-in.
type CreateCheckinInput struct {
	UserID uint
	GoalID uint
	Note   string
	Mood   string
}

// NewCheckinService returns a new CheckinService.
func NewCheckinService(checkinRepo repository.CheckinRepository, goalRepo repository.GoalRepository) *CheckinService {
	return &CheckinService{checkinRepo: checkinRepo, goalRepo: goalRepo}
}

const maxCheckinNoteLen = 1000

func (s *CheckinService) CreateCheckin(ctx context.Context, in CreateCheckinInput) (*models.Checkin, error) {
	if len(in.Note) > maxCheckinNoteLen {
		return nil, models.NewValidationError("Check-in note too long (max 1000 characters)")
	}

	var mood models.CheckinMood
	if in.Mood != "" {
		parsed, ok := models.ParseCheckinMood(in.Mood)
		if !ok {
			return nil, models.NewValidationError("Unknown mood: " + in.Mood)
		}
		mood = parsed
	}

	checkin := &models.Checkin{
		GoalID:      in.GoalID,
		UserID:      in.UserID,
		Note:        in.Note,
		Mood:        mood,
		CompletedAt: time.Now(),
	}
	if err := s.checkinRepo.Create(ctx, checkin); err != nil {
		return nil, err
	}
	return checkin, nil
}

func (s *CheckinService) ListByGoal(ctx context.Context, userID, goalID uint, limit, offset int) ([]models.Checkin, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID && !goal.IsPublic {
		return nil, models.NewUnauthorizedError("This goal is private")
	}
	return s.checkinRepo.ListByGoal(ctx, goalID, limit, offset)
}

// RecentActivity returns the user's check-ins since the given number of days ago.
func (s *CheckinService) RecentActivity(ctx context.Context, userID uint, days int) ([]models.Checkin, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.checkinRepo.ListByUser(ctx, userID, since)
}

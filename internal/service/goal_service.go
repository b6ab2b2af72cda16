package service

import (
	"context"
	"time"

	"aktiv/internal/models"
	"aktiv/internal/repository"
)

// GoalService provides goal lifecycle business logic.
type GoalService struct {
	goalRepo repository.GoalRepository
	userRepo repository.UserRepository
}

// CreateGoalInput carries the fields for a new goal.
type CreateGoalInput struct {
	UserID         uint
	Title          string
	Description    string
	Category       string
	Frequency      string
	FrequencyCount int
	IsPublic       *bool
	EndDate        *time.Time
}

// UpdateGoalInput carries the editable goal fields.
type UpdateGoalInput struct {
	UserID      uint
	GoalID      uint
	Title       string
	Description string
	Frequency   string
	IsPublic    *bool
	Status      string
}

// NewGoalService returns a new GoalService.
func NewGoalService(goalRepo repository.GoalRepository, userRepo repository.UserRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo, userRepo: userRepo}
}

const maxGoalTitleLen = 120

func (s *GoalService) CreateGoal(ctx context.Context, in CreateGoalInput) (*models.Goal, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Goal title is required")
	}
	if len(in.Title) > maxGoalTitleLen {
		return nil, models.NewValidationError("Goal title too long (max 120 characters)")
	}
	category, ok := models.ParseGoalCategory(in.Category)
	if !ok {
		return nil, models.NewValidationError("Unknown goal category: " + in.Category)
	}

	frequency := models.FrequencyDaily
	if in.Frequency != "" {
		frequency, ok = models.ParseGoalFrequency(in.Frequency)
		if !ok {
			return nil, models.NewValidationError("Unknown goal frequency: " + in.Frequency)
		}
	}
	count := in.FrequencyCount
	if count <= 0 {
		count = 1
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	goal := &models.Goal{
		UserID:         in.UserID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       category,
		Frequency:      frequency,
		FrequencyCount: count,
		StartDate:      time.Now(),
		EndDate:        in.EndDate,
		Status:         models.GoalStatusActive,
		IsPublic:       isPublic,
	}
	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, goalID uint) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID && !goal.IsPublic {
		return nil, models.NewUnauthorizedError("This goal is private")
	}
	return goal, nil
}

func (s *GoalService) ListGoals(ctx context.Context, userID uint, status string) ([]models.Goal, error) {
	var filter models.GoalStatus
	if status != "" {
		parsed, ok := models.ParseGoalStatus(status)
		if !ok {
			return nil, models.NewValidationError("Unknown goal status: " + status)
		}
		filter = parsed
	}
	return s.goalRepo.ListByUser(ctx, userID, filter)
}

// ListPublicGoals returns the match-visible goals of another user.
func (s *GoalService) ListPublicGoals(ctx context.Context, ownerID uint, limit int) ([]models.Goal, error) {
	return s.goalRepo.ListPublicActiveByUser(ctx, ownerID, limit)
}

func (s *GoalService) UpdateGoal(ctx context.Context, in UpdateGoalInput) (*models.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, in.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own goals")
	}

	if in.Title != "" {
		if len(in.Title) > maxGoalTitleLen {
			return nil, models.NewValidationError("Goal title too long (max 120 characters)")
		}
		goal.Title = in.Title
	}
	if in.Description != "" {
		goal.Description = in.Description
	}
	if in.Frequency != "" {
		frequency, ok := models.ParseGoalFrequency(in.Frequency)
		if !ok {
			return nil, models.NewValidationError("Unknown goal frequency: " + in.Frequency)
		}
		goal.Frequency = frequency
	}
	if in.IsPublic != nil {
		goal.IsPublic = *in.IsPublic
	}
	if in.Status != "" {
		status, ok := models.ParseGoalStatus(in.Status)
		if !ok {
			return nil, models.NewValidationError("Unknown goal status: " + in.Status)
		}
		if err := s.applyStatusChange(ctx, goal, status); err != nil {
			return nil, err
		}
	}

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// applyStatusChange validates a goal status move and maintains completion
// side effects.
func (s *GoalService) applyStatusChange(ctx context.Context, goal *models.Goal, next models.GoalStatus) error {
	if goal.Status == next {
		return nil
	}
	if goal.Status == models.GoalStatusCompleted || goal.Status == models.GoalStatusAbandoned {
		return models.NewValidationError("A finished goal cannot change status")
	}

	goal.Status = next
	if next == models.GoalStatusCompleted {
		now := time.Now()
		goal.CompletedAt = &now

		user, err := s.userRepo.GetByID(ctx, goal.UserID)
		if err != nil {
			return err
		}
		user.TotalGoalsCompleted++
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return err
	}
	if goal.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own goals")
	}
	return s.goalRepo.Delete(ctx, goalID)
}

package service

import (
	"context"
	"testing"

	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGoalValidation(t *testing.T) {
	goals := &goalRepoStub{
		createFn: func(_ context.Context, g *models.Goal) error {
			g.ID = 5
			return nil
		},
	}
	svc := NewGoalService(goals, nil)
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: 1, Category: "fitness"})
	require.Error(t, err) // missing title

	_, err = svc.CreateGoal(ctx, CreateGoalInput{UserID: 1, Title: "Run", Category: "snowboarding"})
	require.Error(t, err) // unknown category

	_, err = svc.CreateGoal(ctx, CreateGoalInput{UserID: 1, Title: "Run", Category: "fitness", Frequency: "hourly"})
	require.Error(t, err) // unknown frequency

	g, err := svc.CreateGoal(ctx, CreateGoalInput{UserID: 1, Title: "Run", Category: "fitness"})
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusActive, g.Status)
	assert.Equal(t, models.FrequencyDaily, g.Frequency)
	assert.True(t, g.IsPublic)
	assert.Equal(t, 1, g.FrequencyCount)
}

func TestUpdateGoalOwnerOnly(t *testing.T) {
	goals := &goalRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Goal, error) {
			return &models.Goal{ID: id, UserID: 1, Status: models.GoalStatusActive}, nil
		},
		updateFn: func(_ context.Context, _ *models.Goal) error { return nil },
	}
	svc := NewGoalService(goals, nil)

	_, err := svc.UpdateGoal(context.Background(), UpdateGoalInput{UserID: 2, GoalID: 4, Title: "x"})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestCompleteGoalUpdatesUserAggregates(t *testing.T) {
	goal := &models.Goal{ID: 4, UserID: 1, Status: models.GoalStatusActive}
	goals := &goalRepoStub{
		getByIDFn: func(_ context.Context, _ uint) (*models.Goal, error) { return goal, nil },
		updateFn:  func(_ context.Context, _ *models.Goal) error { return nil },
	}
	owner := &models.User{ID: 1, TotalGoalsCompleted: 2}
	users := &userRepoStub{
		getByIDFn: func(_ context.Context, _ uint) (*models.User, error) { return owner, nil },
		updateFn:  func(_ context.Context, _ *models.User) error { return nil },
	}
	svc := NewGoalService(goals, users)

	got, err := svc.UpdateGoal(context.Background(), UpdateGoalInput{UserID: 1, GoalID: 4, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 3, owner.TotalGoalsCompleted)

	// Finished goals are frozen.
	_, err = svc.UpdateGoal(context.Background(), UpdateGoalInput{UserID: 1, GoalID: 4, Status: "active"})
	require.Error(t, err)
}

func TestGetGoalPrivacy(t *testing.T) {
	goals := &goalRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Goal, error) {
			return &models.Goal{ID: id, UserID: 1, IsPublic: false}, nil
		},
	}
	svc := NewGoalService(goals, nil)

	_, err := svc.GetGoal(context.Background(), 2, 4)
	require.Error(t, err)

	_, err = svc.GetGoal(context.Background(), 1, 4)
	assert.NoError(t, err)
}

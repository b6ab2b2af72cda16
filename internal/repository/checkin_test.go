package repository

import (
	"context"
	"testing"
	"time"

	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestCheckinStreaks(t *testing.T) {
	db := newTestDB(t)
	repo := NewCheckinRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	goal := seedGoal(t, db, user.ID, models.CategoryFitness)

	checkin := func(offset int) error {
		return repo.Create(ctx, &models.Checkin{
			GoalID:      goal.ID,
			UserID:      user.ID,
			Mood:        models.MoodGood,
			CompletedAt: day(offset),
		})
	}

	require.NoError(t, checkin(0))
	require.NoError(t, checkin(1))
	require.NoError(t, checkin(2))

	var got models.Goal
	require.NoError(t, db.First(&got, goal.ID).Error)
	assert.Equal(t, 3, got.TotalCheckins)
	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)

	// Second check-in on the same day counts toward totals, not the streak.
	require.NoError(t, checkin(2))
	require.NoError(t, db.First(&got, goal.ID).Error)
	assert.Equal(t, 4, got.TotalCheckins)
	assert.Equal(t, 3, got.CurrentStreak)

	// A gap resets the current streak; the longest survives.
	require.NoError(t, checkin(5))
	require.NoError(t, db.First(&got, goal.ID).Error)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)

	var owner models.User
	require.NoError(t, db.First(&owner, user.ID).Error)
	assert.Equal(t, 5, owner.TotalCheckins)
}

func TestCheckinRejectsWrongOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewCheckinRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db)
	other := seedUser(t, db)
	goal := seedGoal(t, db, owner.ID, models.CategoryReading)

	err := repo.Create(ctx, &models.Checkin{GoalID: goal.ID, UserID: other.ID})
	require.Error(t, err)

	var count int64
	db.Model(&models.Checkin{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckinRejectsInactiveGoal(t *testing.T) {
	db := newTestDB(t)
	repo := NewCheckinRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	goal := seedGoal(t, db, user.ID, models.CategoryReading, func(g *models.Goal) {
		g.Status = models.GoalStatusCompleted
	})

	err := repo.Create(ctx, &models.Checkin{GoalID: goal.ID, UserID: user.ID})
	require.Error(t, err)
}

func TestCheckinListByGoal(t *testing.T) {
	db := newTestDB(t)
	repo := NewCheckinRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	goal := seedGoal(t, db, user.ID, models.CategoryMindfulness)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Checkin{
			GoalID: goal.ID, UserID: user.ID, CompletedAt: day(i),
		}))
	}

	list, err := repo.ListByGoal(ctx, goal.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	assert.True(t, list[0].CompletedAt.After(list[1].CompletedAt))
}

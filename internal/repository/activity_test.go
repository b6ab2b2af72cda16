package repository

import (
	"context"
	"testing"
	"time"

	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityJoinCapacity(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db)
	a := &models.Activity{
		CreatorID:       creator.ID,
		Title:           "Morning run",
		Category:        models.CategoryFitness,
		LocationName:    "Riverside park",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		MaxParticipants: 2,
		Status:          models.ActivityStatusOpen,
	}
	require.NoError(t, repo.Create(ctx, a))

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)
	u3 := seedUser(t, db)

	require.NoError(t, repo.Join(ctx, a.ID, u1.ID))
	require.NoError(t, repo.Join(ctx, a.ID, u2.ID))

	// At capacity the activity flips to full and refuses further joins.
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityStatusFull, got.Status)
	assert.Equal(t, 2, got.CurrentParticipants)

	require.Error(t, repo.Join(ctx, a.ID, u3.ID))

	// Leaving reopens the slot.
	require.NoError(t, repo.Leave(ctx, a.ID, u1.ID))
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityStatusOpen, got.Status)
	assert.Equal(t, 1, got.CurrentParticipants)

	require.NoError(t, repo.Join(ctx, a.ID, u3.ID))
}

func TestActivityJoinTwiceRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db)
	a := &models.Activity{
		CreatorID:    creator.ID,
		Title:        "Book club",
		Category:     models.CategoryReading,
		LocationName: "Library",
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		Status:       models.ActivityStatusOpen,
	}
	require.NoError(t, repo.Create(ctx, a))

	u := seedUser(t, db)
	require.NoError(t, repo.Join(ctx, a.ID, u.ID))
	require.Error(t, repo.Join(ctx, a.ID, u.ID))
}

func TestActivityListUpcomingFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	creator := seedUser(t, db)

	mk := func(title string, cat models.GoalCategory, at time.Time, status models.ActivityStatus) {
		require.NoError(t, repo.Create(ctx, &models.Activity{
			CreatorID:    creator.ID,
			Title:        title,
			Category:     cat,
			LocationName: "somewhere",
			ScheduledAt:  at,
			Status:       status,
		}))
	}

	mk("future run", models.CategoryFitness, time.Now().Add(time.Hour), models.ActivityStatusOpen)
	mk("past run", models.CategoryFitness, time.Now().Add(-time.Hour), models.ActivityStatusOpen)
	mk("cancelled", models.CategoryFitness, time.Now().Add(time.Hour), models.ActivityStatusCancelled)
	mk("future reading", models.CategoryReading, time.Now().Add(2*time.Hour), models.ActivityStatusOpen)

	all, err := repo.ListUpcoming(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fitness, err := repo.ListUpcoming(ctx, models.CategoryFitness, 10, 0)
	require.NoError(t, err)
	require.Len(t, fitness, 1)
	assert.Equal(t, "future run", fitness[0].Title)
}

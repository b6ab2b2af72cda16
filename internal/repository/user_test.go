package repository

import (
	"context"
	"testing"

	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db)

	err := repo.Create(ctx, &models.User{
		Username: u.Username,
		Email:    "other@example.com",
		Password: "hashed",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUserRepositoryGetByEmailMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	// Absent user is nil, nil so callers can distinguish from failures.
	u, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepositoryUpdateLocation(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db)
	require.NoError(t, repo.UpdateLocation(ctx, u.ID, ptr(48.85), ptr(2.35), 30))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.HasLocation())
	assert.Equal(t, 48.85, *got.Latitude)
	assert.Equal(t, 30.0, got.MaxDistanceKm)

	// Clearing the location keeps the radius.
	require.NoError(t, repo.UpdateLocation(ctx, u.ID, nil, nil, 0))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.HasLocation())
	assert.Equal(t, 30.0, got.MaxDistanceKm)
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 4242)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserRepositorySearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, func(u *models.User) {
		u.Username = "alice_runner"
		u.FullName = "Alice Torres"
	})
	seedUser(t, db, func(u *models.User) {
		u.Username = "bob_lifter"
		u.FullName = "Bob Alicante"
	})
	seedUser(t, db, func(u *models.User) {
		u.Username = "carol_coder"
		u.FullName = "Carol Chen"
	})

	// Case-insensitive, matches username or full name.
	got, err := repo.Search(ctx, "ALIC", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, alice.Username, got[0].Username)

	got, err = repo.Search(ctx, "chen", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol_coder", got[0].Username)

	got, err = repo.Search(ctx, "nomatch", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

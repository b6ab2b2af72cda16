package repository

import (
	"context"
	"testing"

	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepositoryCanonicalPair(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)

	// Initiate from the higher ID; stored order must still be ascending.
	m, err := repo.Create(ctx, &models.Match{
		UserAID:     u2.ID,
		UserBID:     u1.ID,
		InitiatorID: u2.ID,
		Status:      models.MatchStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, u1.ID, m.UserAID)
	assert.Equal(t, u2.ID, m.UserBID)
	assert.Equal(t, u2.ID, m.InitiatorID)
	assert.False(t, m.MatchedAt.IsZero())
}

func TestMatchRepositoryDuplicatePairReturnsExisting(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)

	first, err := repo.Create(ctx, &models.Match{
		UserAID: u1.ID, UserBID: u2.ID, InitiatorID: u1.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)

	// The mutual request from the other side loses the race and gets the
	// surviving row back.
	second, err := repo.Create(ctx, &models.Match{
		UserAID: u2.ID, UserBID: u1.ID, InitiatorID: u2.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, u1.ID, second.InitiatorID)

	var count int64
	db.Model(&models.Match{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestMatchRepositoryPendingDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	initiator := seedUser(t, db)
	receiver := seedUser(t, db)

	_, err := repo.Create(ctx, &models.Match{
		UserAID: initiator.ID, UserBID: receiver.ID, InitiatorID: initiator.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)

	received, err := repo.GetPendingReceived(ctx, receiver.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, initiator.ID, received[0].InitiatorID)

	// The initiator sees it under sent, not received.
	received, err = repo.GetPendingReceived(ctx, initiator.ID)
	require.NoError(t, err)
	assert.Empty(t, received)

	sent, err := repo.GetPendingSent(ctx, initiator.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestMatchRepositoryStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)

	m, err := repo.Create(ctx, &models.Match{
		UserAID: u1.ID, UserBID: u2.ID, InitiatorID: u1.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, m, models.MatchStatusAccepted))
	assert.Equal(t, models.MatchStatusAccepted, m.Status)
	require.NotNil(t, m.AcceptedAt)

	// Accepted cannot go back to rejected.
	err = repo.UpdateStatus(ctx, m, models.MatchStatusRejected)
	require.Error(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, m, models.MatchStatusBlocked))

	// Blocked is terminal.
	err = repo.UpdateStatus(ctx, m, models.MatchStatusAccepted)
	require.Error(t, err)
}

func TestMatchRepositoryStaleStatusRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)

	m, err := repo.Create(ctx, &models.Match{
		UserAID: u1.ID, UserBID: u2.ID, InitiatorID: u1.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)

	// Another writer accepts first.
	stale := *m
	require.NoError(t, repo.UpdateStatus(ctx, m, models.MatchStatusAccepted))

	// The stale in-memory copy still says pending; the SQL guard refuses.
	err = repo.UpdateStatus(ctx, &stale, models.MatchStatusRejected)
	require.Error(t, err)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, got.Status)
}

func TestMatchRepositoryGetPartnerIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	me := seedUser(t, db)
	pending := seedUser(t, db)
	accepted := seedUser(t, db)
	rejected := seedUser(t, db)
	stranger := seedUser(t, db)

	for _, tc := range []struct {
		other  *models.User
		status models.MatchStatus
	}{
		{pending, models.MatchStatusPending},
		{accepted, models.MatchStatusAccepted},
		{rejected, models.MatchStatusRejected},
	} {
		_, err := repo.Create(ctx, &models.Match{
			UserAID: me.ID, UserBID: tc.other.ID, InitiatorID: me.ID,
			Status: tc.status,
		})
		require.NoError(t, err)
	}

	partners, err := repo.GetPartnerIDs(ctx, me.ID)
	require.NoError(t, err)

	// Every status excludes, including rejected.
	assert.Len(t, partners, 3)
	assert.Contains(t, partners, pending.ID)
	assert.Contains(t, partners, accepted.ID)
	assert.Contains(t, partners, rejected.ID)
	assert.NotContains(t, partners, stranger.ID)
}

func TestMatchRepositoryGetByPairEitherOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)

	_, err := repo.Create(ctx, &models.Match{
		UserAID: u1.ID, UserBID: u2.ID, InitiatorID: u1.ID,
		Status: models.MatchStatusPending,
	})
	require.NoError(t, err)

	m, err := repo.GetByPair(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	require.NotNil(t, m)

	none, err := repo.GetByPair(ctx, u1.ID, 9999)
	require.NoError(t, err)
	assert.Nil(t, none)
}

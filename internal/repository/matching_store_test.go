package repository

import (
	"context"
	"testing"

	"aktiv/internal/matching"
	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStore(t *testing.T) (matching.Store, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewMatchingStore(db, NewMatchRepository(db)), db
}

func TestMatchingStoreBatchCategories(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	u1 := seedUser(t, db)
	u2 := seedUser(t, db)
	u3 := seedUser(t, db)

	seedGoal(t, db, u1.ID, models.CategoryFitness)
	// Duplicate category collapses into one set member.
	seedGoal(t, db, u1.ID, models.CategoryFitness)
	seedGoal(t, db, u1.ID, models.CategoryReading)

	// Private and paused goals are invisible to matching.
	seedGoal(t, db, u2.ID, models.CategoryFitness, func(g *models.Goal) { g.IsPublic = false })
	seedGoal(t, db, u2.ID, models.CategoryLearning, func(g *models.Goal) { g.Status = models.GoalStatusPaused })
	seedGoal(t, db, u2.ID, models.CategorySocial)

	sets, err := store.BatchGetActivePublicCategories(ctx, []uint{u1.ID, u2.ID, u3.ID})
	require.NoError(t, err)

	assert.Equal(t, matching.NewCategorySet(models.CategoryFitness, models.CategoryReading), sets[u1.ID])
	assert.Equal(t, matching.NewCategorySet(models.CategorySocial), sets[u2.ID])
	// No goals at all: absent from the map, single read treats it as empty.
	assert.NotContains(t, sets, u3.ID)

	single, err := store.GetActivePublicCategories(ctx, u3.ID)
	require.NoError(t, err)
	assert.Empty(t, single)
}

func TestMatchingStoreGetLocation(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	located := seedUser(t, db, func(u *models.User) {
		u.Latitude = ptr(40.7)
		u.Longitude = ptr(-74.0)
		u.MaxDistanceKm = 25
	})
	unlocated := seedUser(t, db)

	loc, err := store.GetLocation(ctx, located.ID)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 40.7, loc.Latitude)
	assert.Equal(t, 25.0, loc.MaxDistanceKm)

	loc, err = store.GetLocation(ctx, unlocated.ID)
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestMatchingStoreListCandidatesAccountability(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	in := seedUser(t, db)
	optedOut := seedUser(t, db, func(u *models.User) { u.AccountabilityMode = false })
	excluded := seedUser(t, db)

	cands, err := store.ListCandidates(ctx, matching.ModeAccountability,
		map[uint]struct{}{excluded.ID: {}})
	require.NoError(t, err)

	ids := make(map[uint]bool)
	for _, c := range cands {
		ids[c.UserID] = true
	}
	assert.True(t, ids[in.ID])
	assert.False(t, ids[optedOut.ID])
	assert.False(t, ids[excluded.ID])
}

func TestMatchingStoreListCandidatesInPerson(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	located := seedUser(t, db, func(u *models.User) {
		u.Latitude = ptr(51.5)
		u.Longitude = ptr(-0.1)
	})
	unlocated := seedUser(t, db)

	cands, err := store.ListCandidates(ctx, matching.ModeInPerson, nil)
	require.NoError(t, err)

	require.Len(t, cands, 1)
	assert.Equal(t, located.ID, cands[0].UserID)
	_ = unlocated
}

func TestRankerOverMatchingStore(t *testing.T) {
	store, db := newStore(t)
	matches := NewMatchRepository(db)
	ranker := matching.NewRanker(store)
	ctx := context.Background()

	me := seedUser(t, db)
	seedGoal(t, db, me.ID, models.CategoryFitness)
	seedGoal(t, db, me.ID, models.CategoryReading)

	strong := seedUser(t, db)
	seedGoal(t, db, strong.ID, models.CategoryFitness)
	seedGoal(t, db, strong.ID, models.CategoryReading)

	weak := seedUser(t, db)
	seedGoal(t, db, weak.ID, models.CategoryFitness)
	seedGoal(t, db, weak.ID, models.CategorySocial)
	seedGoal(t, db, weak.ID, models.CategoryFinance)

	none := seedUser(t, db)
	seedGoal(t, db, none.ID, models.CategoryCareer)

	already := seedUser(t, db)
	seedGoal(t, db, already.ID, models.CategoryFitness)
	_, err := matches.Create(ctx, &models.Match{
		UserAID: me.ID, UserBID: already.ID, InitiatorID: me.ID,
		Status: models.MatchStatusRejected,
	})
	require.NoError(t, err)

	results, err := ranker.Rank(ctx, me.ID, matching.ModeAccountability, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, strong.ID, results[0].UserID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, weak.ID, results[1].UserID)
	assert.InDelta(t, 0.25, results[1].Score, 1e-9)
}

package seed

import (
	"fmt"
	"testing"

	"aktiv/internal/database"
	"aktiv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seedTestDBSeq int

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	seedTestDBSeq++
	dsn := fmt.Sprintf("file:seed_test_%d?mode=memory&cache=shared", seedTestDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeedPopulatesAllTables(t *testing.T) {
	db := newSeedTestDB(t)

	err := Seed(db, Options{NumUsers: 8, GoalsPerUser: 2, SkipBcrypt: true})
	require.NoError(t, err)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(9), userCount, "8 generated users plus the demo account")

	var goalCount int64
	require.NoError(t, db.Model(&models.Goal{}).Count(&goalCount).Error)
	assert.Equal(t, int64(18), goalCount)

	var matchCount int64
	require.NoError(t, db.Model(&models.Match{}).Count(&matchCount).Error)
	assert.Equal(t, int64(4), matchCount, "adjacent pairing of 9 users yields 4 matches")

	var demo models.User
	require.NoError(t, db.Where("email = ?", "demo@aktiv.dev").First(&demo).Error)
	assert.Equal(t, "demo_user", demo.Username)
	assert.Equal(t, "password123", demo.Password)
}

func TestSeedShouldCleanRemovesOldRows(t *testing.T) {
	db := newSeedTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 4, GoalsPerUser: 1, SkipBcrypt: true}))
	require.NoError(t, Seed(db, Options{NumUsers: 2, GoalsPerUser: 1, SkipBcrypt: true, ShouldClean: true}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(3), userCount)
}

func TestFactoryMatchCanonicalOrder(t *testing.T) {
	db := newSeedTestDB(t)
	f, err := NewFactory(db, SeedOptions{SkipBcrypt: true})
	require.NoError(t, err)

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	// Initiate from the higher ID; the stored pair must still be canonical.
	match, err := f.CreateMatch(b, a, models.MatchStatusPending)
	require.NoError(t, err)
	assert.Less(t, match.UserAID, match.UserBID)
	assert.Equal(t, b.ID, match.InitiatorID)
}

func TestFactoryGoalTemplates(t *testing.T) {
	db := newSeedTestDB(t)
	f, err := NewFactory(db, SeedOptions{SkipBcrypt: true, DryRun: true})
	require.NoError(t, err)

	// Every category has a template pool.
	for _, cat := range models.GoalCategories {
		assert.NotEmpty(t, f.templates[string(cat)], "missing templates for %s", cat)
	}

	user, err := f.CreateUser()
	require.NoError(t, err)
	goal, err := f.CreateGoal(user, models.CategoryFitness)
	require.NoError(t, err)
	assert.Contains(t, f.templates["fitness"], goal.Title)
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	assert.True(t, goal.IsPublic)
}

func TestFactoryDryRunWritesNothing(t *testing.T) {
	db := newSeedTestDB(t)
	f, err := NewFactory(db, SeedOptions{DryRun: true, SkipBcrypt: true})
	require.NoError(t, err)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

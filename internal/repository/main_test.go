package repository

import (
	"fmt"
	"testing"
	"time"

	"aktiv/internal/database"
	"aktiv/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test so cases never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, mutate ...func(*models.User)) *models.User {
	t.Helper()
	userSeq++
	u := &models.User{
		Username:           fmt.Sprintf("user%d", userSeq),
		Email:              fmt.Sprintf("user%d@example.com", userSeq),
		Password:           "hashed",
		AccountabilityMode: true,
		MaxDistanceKm:      50,
		LastActiveAt:       time.Now(),
	}
	for _, fn := range mutate {
		fn(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedGoal(t *testing.T, db *gorm.DB, userID uint, category models.GoalCategory, mutate ...func(*models.Goal)) *models.Goal {
	t.Helper()
	g := &models.Goal{
		UserID:    userID,
		Title:     fmt.Sprintf("%s goal", category),
		Category:  category,
		Frequency: models.FrequencyDaily,
		Status:    models.GoalStatusActive,
		IsPublic:  true,
		StartDate: time.Now(),
	}
	for _, fn := range mutate {
		fn(g)
	}
	require.NoError(t, db.Create(g).Error)
	return g
}

func ptr(f float64) *float64 {
	return &f
}

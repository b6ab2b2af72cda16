package seed

import (
	"fmt"
	"log"

	"aktiv/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	GoalsPerUser int
	ShouldClean  bool
	SkipBcrypt   bool
}

// seedCity anchors generated users to a real metro so in-person matching has
// plausible clusters instead of users scattered across the globe.
type seedCity struct {
	name    string
	state   string
	country string
	lat     float64
	lon     float64
}

var seedCities = []seedCity{
	{"New York", "NY", "US", 40.7128, -74.0060},
	{"Los Angeles", "CA", "US", 34.0522, -118.2437},
	{"Chicago", "IL", "US", 41.8781, -87.6298},
	{"Austin", "TX", "US", 30.2672, -97.7431},
	{"Seattle", "WA", "US", 47.6062, -122.3321},
	{"Denver", "CO", "US", 39.7392, -104.9903},
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users, %d goals each...", opts.NumUsers, opts.GoalsPerUser)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory, err := NewFactory(db, SeedOptions{SkipBcrypt: opts.SkipBcrypt})
	if err != nil {
		return err
	}

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	goalsByUser, err := createGoals(factory, users, opts.GoalsPerUser)
	if err != nil {
		return fmt.Errorf("failed to create goals: %w", err)
	}

	if err := createCheckins(factory, goalsByUser); err != nil {
		return fmt.Errorf("failed to create check-ins: %w", err)
	}

	if err := createMatches(factory, users); err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}

	if err := createActivities(factory, users); err != nil {
		return fmt.Errorf("failed to create activities: %w", err)
	}

	log.Println("🎉 Database seeding completed successfully!")
	log.Println("📧 All demo accounts log in with password: password123")
	return nil
}

// clearData removes seeded rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []string{
		"messages", "checkins", "activity_participants", "activities",
		"matches", "goals", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count+1)

	// A predictable demo account for manual testing.
	demo, err := f.CreateUser(func(u *models.User) {
		u.Username = "demo_user"
		u.Email = "demo@aktiv.dev"
		u.FullName = "Demo User"
		u.Bio = "I keep my promises to future me."
	})
	if err != nil {
		return nil, err
	}
	users = append(users, demo)

	for i := 0; i < count; i++ {
		city := seedCities[i%len(seedCities)]
		shareLocation := i%3 != 0 // roughly two thirds of users share a location

		user, err := f.CreateUser(func(u *models.User) {
			u.LocationCity = city.name
			u.LocationState = city.state
			u.LocationCountry = city.country
			if shareLocation {
				// jitter within ~10km of the city center
				lat := city.lat + (f.rng.Float64()-0.5)*0.2
				lon := city.lon + (f.rng.Float64()-0.5)*0.2
				u.Latitude = &lat
				u.Longitude = &lon
			}
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createGoals(f *Factory, users []*models.User, perUser int) (map[uint][]*models.Goal, error) {
	if perUser <= 0 {
		perUser = 2
	}
	byUser := make(map[uint][]*models.Goal, len(users))
	total := 0

	for _, user := range users {
		// Bias each user toward a couple of categories so Jaccard overlap
		// in suggestions is meaningful rather than uniform noise.
		primary := models.GoalCategories[f.rng.Intn(len(models.GoalCategories))]
		for i := 0; i < perUser; i++ {
			category := primary
			if i > 0 && f.rng.Intn(3) == 0 {
				category = models.GoalCategories[f.rng.Intn(len(models.GoalCategories))]
			}
			goal, err := f.CreateGoal(user, category, func(g *models.Goal) {
				switch f.rng.Intn(10) {
				case 0:
					g.Status = models.GoalStatusPaused
				case 1:
					g.IsPublic = false
				}
			})
			if err != nil {
				return nil, err
			}
			byUser[user.ID] = append(byUser[user.ID], goal)
			total++
		}
	}
	log.Printf("✓ %d goals created", total)
	return byUser, nil
}

func createCheckins(f *Factory, goalsByUser map[uint][]*models.Goal) error {
	total := 0
	for _, goals := range goalsByUser {
		for _, goal := range goals {
			if goal.Status != models.GoalStatusActive {
				continue
			}
			n := f.rng.Intn(8)
			for i := 0; i < n; i++ {
				if _, err := f.CreateCheckin(goal); err != nil {
					return err
				}
				total++
			}
		}
	}
	log.Printf("✓ %d check-ins created", total)
	return nil
}

func createMatches(f *Factory, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	statuses := []models.MatchStatus{
		models.MatchStatusPending,
		models.MatchStatusAccepted,
		models.MatchStatusAccepted,
		models.MatchStatusRejected,
	}

	// pair adjacent users so every unordered pair is created at most once
	created := 0
	for i := 0; i+1 < len(users); i += 2 {
		status := statuses[f.rng.Intn(len(statuses))]
		match, err := f.CreateMatch(users[i], users[i+1], status)
		if err != nil {
			return err
		}
		created++

		if status == models.MatchStatusAccepted {
			for m := 0; m < f.rng.Intn(5)+1; m++ {
				sender := users[i]
				if m%2 == 1 {
					sender = users[i+1]
				}
				if _, err := f.CreateMessage(match, sender); err != nil {
					return err
				}
			}
		}
	}
	log.Printf("✓ %d matches created", created)
	return nil
}

func createActivities(f *Factory, users []*models.User) error {
	created := 0
	for _, user := range users {
		if !user.HasLocation() || f.rng.Intn(4) != 0 {
			continue
		}
		category := models.GoalCategories[f.rng.Intn(len(models.GoalCategories))]
		if _, err := f.CreateActivity(user, category); err != nil {
			return err
		}
		created++
	}
	log.Printf("✓ %d activities created", created)
	return nil
}

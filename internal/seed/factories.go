// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	_ "embed"
	"fmt"
	"log"
	"math/rand"
	"time"

	"aktiv/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed goal_templates.yml
var goalTemplatesYAML []byte

// SeedOptions tune how the Factory generates entities.
type SeedOptions struct {
	// DryRun logs what would be created without touching the database.
	DryRun bool
	// SkipBcrypt stores the demo password in plaintext for fast dev seeding.
	SkipBcrypt bool
	// MaxDays is the created-at spread for generated history, default 90.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db        *gorm.DB
	opts      SeedOptions
	rng       *rand.Rand
	templates map[string][]string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	templates := make(map[string][]string)
	if err := yaml.Unmarshal(goalTemplatesYAML, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse goal templates: %w", err)
	}

	return &Factory{
		db:        db,
		opts:      opts,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		templates: templates,
		nextID:    1000,
	}, nil
}

// pastTime returns a timestamp spread across the configured history window.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:           gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:              gofakeit.Email(),
		FullName:           gofakeit.Name(),
		Bio:                gofakeit.Sentence(10),
		Avatar:             fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		AccountabilityMode: true,
		MaxDistanceKm:      float64(gofakeit.Number(10, 100)),
		LastActiveAt:       f.pastTime(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGoal constructs and persists a sample `models.Goal` for the given user.
// The title is drawn from the per-category template pool.
func (f *Factory) CreateGoal(user *models.User, category models.GoalCategory, overrides ...func(*models.Goal)) (*models.Goal, error) {
	goal := &models.Goal{
		UserID:         user.ID,
		Title:          f.goalTitle(category),
		Description:    gofakeit.Sentence(12),
		Category:       category,
		Frequency:      models.FrequencyDaily,
		FrequencyCount: 1,
		StartDate:      f.pastTime(),
		Status:         models.GoalStatusActive,
		IsPublic:       true,
	}

	for _, override := range overrides {
		override(goal)
	}

	if f.opts.DryRun {
		f.nextID++
		goal.ID = f.nextID
		log.Printf("[dry-run] CreateGoal: %q (%s) for user %d", goal.Title, goal.Category, goal.UserID)
		return goal, nil
	}

	if err := f.db.Create(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

func (f *Factory) goalTitle(category models.GoalCategory) string {
	titles := f.templates[string(category)]
	if len(titles) == 0 {
		return gofakeit.Sentence(4)
	}
	return titles[f.rng.Intn(len(titles))]
}

// CreateCheckin constructs and persists a check-in against the given goal.
func (f *Factory) CreateCheckin(goal *models.Goal, overrides ...func(*models.Checkin)) (*models.Checkin, error) {
	moods := []models.CheckinMood{models.MoodGreat, models.MoodGood, models.MoodOkay, models.MoodStruggling}
	checkin := &models.Checkin{
		GoalID:      goal.ID,
		UserID:      goal.UserID,
		Note:        gofakeit.Sentence(8),
		Mood:        moods[f.rng.Intn(len(moods))],
		CompletedAt: f.pastTime(),
	}

	for _, override := range overrides {
		override(checkin)
	}

	if f.opts.DryRun {
		f.nextID++
		checkin.ID = f.nextID
		log.Printf("[dry-run] CreateCheckin: goal %d user %d", checkin.GoalID, checkin.UserID)
		return checkin, nil
	}

	if err := f.db.Create(checkin).Error; err != nil {
		return nil, err
	}
	return checkin, nil
}

// CreateMatch constructs and persists a match edge between two users.
// The model hook normalizes the pair ordering on create.
func (f *Factory) CreateMatch(initiator, receiver *models.User, status models.MatchStatus, overrides ...func(*models.Match)) (*models.Match, error) {
	match := &models.Match{
		UserAID:         initiator.ID,
		UserBID:         receiver.ID,
		InitiatorID:     initiator.ID,
		Status:          status,
		ScoreAtCreation: f.rng.Float64(),
		MatchedAt:       f.pastTime(),
	}
	if status == models.MatchStatusAccepted {
		acceptedAt := match.MatchedAt.Add(time.Duration(f.rng.Intn(48)) * time.Hour)
		match.AcceptedAt = &acceptedAt
	}

	for _, override := range overrides {
		override(match)
	}

	if f.opts.DryRun {
		f.nextID++
		match.ID = f.nextID
		log.Printf("[dry-run] CreateMatch: %d -> %d (%s)", match.InitiatorID, receiver.ID, match.Status)
		return match, nil
	}

	if err := f.db.Create(match).Error; err != nil {
		return nil, err
	}
	return match, nil
}

// CreateMessage constructs and persists a chat message inside a match.
func (f *Factory) CreateMessage(match *models.Match, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	message := &models.Message{
		MatchID:  match.ID,
		SenderID: sender.ID,
		Content:  gofakeit.Sentence(f.rng.Intn(12) + 3),
	}

	for _, override := range overrides {
		override(message)
	}

	if f.opts.DryRun {
		f.nextID++
		message.ID = f.nextID
		log.Printf("[dry-run] CreateMessage: match %d sender %d", message.MatchID, message.SenderID)
		return message, nil
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// CreateActivity constructs and persists an in-person activity for the creator.
func (f *Factory) CreateActivity(creator *models.User, category models.GoalCategory, overrides ...func(*models.Activity)) (*models.Activity, error) {
	lat := gofakeit.Latitude()
	lon := gofakeit.Longitude()
	if creator.HasLocation() {
		// Keep the activity near the creator, within roughly 10km.
		lat = *creator.Latitude + (f.rng.Float64()-0.5)*0.2
		lon = *creator.Longitude + (f.rng.Float64()-0.5)*0.2
	}

	activity := &models.Activity{
		CreatorID:       creator.ID,
		Title:           fmt.Sprintf("%s meetup at %s", category, gofakeit.Company()),
		Description:     gofakeit.Sentence(14),
		Category:        category,
		LocationName:    gofakeit.Company(),
		LocationAddress: gofakeit.Address().Address,
		Latitude:        &lat,
		Longitude:       &lon,
		ScheduledAt:     time.Now().Add(time.Duration(f.rng.Intn(14*24)) * time.Hour),
		DurationMinutes: 30 + 30*f.rng.Intn(4),
		MaxParticipants: f.rng.Intn(10),
		Status:          models.ActivityStatusOpen,
	}

	for _, override := range overrides {
		override(activity)
	}

	if f.opts.DryRun {
		f.nextID++
		activity.ID = f.nextID
		log.Printf("[dry-run] CreateActivity: %q by user %d", activity.Title, activity.CreatorID)
		return activity, nil
	}

	if err := f.db.Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

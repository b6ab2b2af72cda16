package repository

import (
	"context"

	"aktiv/internal/matching"
	"aktiv/internal/models"

	"gorm.io/gorm"
)

// matchingStore implements matching.Store on top of the relational schema.
// Every method is a single query; the ranker calls BatchGetActivePublicCategories
// once per ranking request instead of once per candidate.
type matchingStore struct {
	db      *gorm.DB
	matches MatchRepository
}

// NewMatchingStore returns a matching.Store backed by the database.
func NewMatchingStore(db *gorm.DB, matches MatchRepository) matching.Store {
	return &matchingStore{db: db, matches: matches}
}

func (s *matchingStore) GetActivePublicCategories(ctx context.Context, userID uint) (matching.CategorySet, error) {
	sets, err := s.BatchGetActivePublicCategories(ctx, []uint{userID})
	if err != nil {
		return nil, err
	}
	if set, ok := sets[userID]; ok {
		return set, nil
	}
	return matching.CategorySet{}, nil
}

func (s *matchingStore) BatchGetActivePublicCategories(ctx context.Context, userIDs []uint) (map[uint]matching.CategorySet, error) {
	out := make(map[uint]matching.CategorySet, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID   uint
		Category models.GoalCategory
	}
	if err := readDB(s.db).WithContext(ctx).
		Model(&models.Goal{}).
		Select("DISTINCT user_id, category").
		Where("user_id IN ? AND status = ? AND is_public = ?",
			userIDs, models.GoalStatusActive, true).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		set, ok := out[row.UserID]
		if !ok {
			set = matching.CategorySet{}
			out[row.UserID] = set
		}
		set[row.Category] = struct{}{}
	}
	return out, nil
}

func (s *matchingStore) GetLocation(ctx context.Context, userID uint) (*matching.Location, error) {
	var user models.User
	if err := readDB(s.db).WithContext(ctx).
		Select("latitude", "longitude", "max_distance_km").
		First(&user, userID).Error; err != nil {
		return nil, err
	}
	if !user.HasLocation() {
		return nil, nil
	}
	return &matching.Location{
		Latitude:      *user.Latitude,
		Longitude:     *user.Longitude,
		MaxDistanceKm: user.MaxDistanceKm,
	}, nil
}

func (s *matchingStore) GetExclusionSet(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	return s.matches.GetPartnerIDs(ctx, userID)
}

func (s *matchingStore) ListCandidates(ctx context.Context, mode matching.Mode, excluding map[uint]struct{}) ([]matching.Candidate, error) {
	q := readDB(s.db).WithContext(ctx).
		Model(&models.User{}).
		Select("id", "latitude", "longitude", "max_distance_km", "last_active_at")

	switch mode {
	case matching.ModeAccountability:
		q = q.Where("accountability_mode = ?", true)
	case matching.ModeInPerson:
		q = q.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	if len(excluding) > 0 {
		ids := make([]uint, 0, len(excluding))
		for id := range excluding {
			ids = append(ids, id)
		}
		q = q.Where("id NOT IN ?", ids)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}

	candidates := make([]matching.Candidate, len(users))
	for i, u := range users {
		candidates[i] = matching.Candidate{
			UserID:        u.ID,
			Latitude:      u.Latitude,
			Longitude:     u.Longitude,
			MaxDistanceKm: u.MaxDistanceKm,
			LastActiveAt:  u.LastActiveAt,
		}
	}
	return candidates, nil
}

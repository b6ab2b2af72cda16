package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"aktiv/internal/models"
)

// ErrInvalidMode is returned before any store access when the caller passes
// an unknown matching mode.
var ErrInvalidMode = errors.New("invalid matching mode")

// DefaultLimit is the result page size when the caller passes limit <= 0.
const DefaultLimit = 20

// Location is a user's geographic point plus their stated search radius.
type Location struct {
	Latitude      float64
	Longitude     float64
	MaxDistanceKm float64
}

// Candidate is one member of the eligible pool before scoring.
type Candidate struct {
	UserID        uint
	Latitude      *float64
	Longitude     *float64
	MaxDistanceKm float64
	LastActiveAt  time.Time
}

// RankedCandidate is one suggestion in the ordered result page.
type RankedCandidate struct {
	UserID           uint                  `json:"user_id"`
	Score            float64               `json:"score"`
	SharedCategories []models.GoalCategory `json:"shared_categories"`
	// DistanceKm is set for in-person mode only.
	DistanceKm   *float64  `json:"distance_km,omitempty"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// Store is the read interface the ranker needs from the persistence layer.
// Implementations must batch: BatchGetActivePublicCategories is one bulk
// query, never a per-candidate loop.
type Store interface {
	// GetActivePublicCategories returns the distinct categories of the
	// user's active, public goals.
	GetActivePublicCategories(ctx context.Context, userID uint) (CategorySet, error)
	// GetLocation returns the user's point and radius, or nil if the user
	// has not shared a location.
	GetLocation(ctx context.Context, userID uint) (*Location, error)
	// GetExclusionSet returns every user already in a match edge with userID,
	// in any status.
	GetExclusionSet(ctx context.Context, userID uint) (map[uint]struct{}, error)
	// ListCandidates returns all users eligible for the mode, excluding the
	// requester and the given set.
	ListCandidates(ctx context.Context, mode Mode, excluding map[uint]struct{}) ([]Candidate, error)
	// BatchGetActivePublicCategories returns category sets for all the given
	// users in a single read.
	BatchGetActivePublicCategories(ctx context.Context, userIDs []uint) (map[uint]CategorySet, error)
}

// Ranker produces ordered partner suggestions for a requester.
// It is stateless and safe for concurrent use.
type Ranker struct {
	store Store
}

// NewRanker returns a Ranker reading through the given store.
func NewRanker(store Store) *Ranker {
	return &Ranker{store: store}
}

// Rank returns the top candidates for the requester in the given mode,
// ordered by score descending with distance and recency tie-breaks.
//
// Empty results are legitimate (requester without public goals, in-person
// mode without a location, nobody left after exclusions) and are returned as
// an empty slice. Any store failure aborts the whole call: a partial pool
// would silently bias the ranking.
func (r *Ranker) Rank(ctx context.Context, requesterID uint, mode Mode, limit int) ([]RankedCandidate, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	requesterCats, err := r.store.GetActivePublicCategories(ctx, requesterID)
	if err != nil {
		return nil, unavailable(err)
	}

	var origin *Location
	if mode == ModeInPerson {
		origin, err = r.store.GetLocation(ctx, requesterID)
		if err != nil {
			return nil, unavailable(err)
		}
		if origin == nil {
			// Nothing meaningful to rank against. Defined empty result.
			return []RankedCandidate{}, nil
		}
	}

	excluded, err := r.store.GetExclusionSet(ctx, requesterID)
	if err != nil {
		return nil, unavailable(err)
	}

	pool, err := r.store.ListCandidates(ctx, mode, excluded)
	if err != nil {
		return nil, unavailable(err)
	}

	// For in-person mode, resolve distances and drop candidates outside the
	// effective radius before scoring. The effective radius is the smaller of
	// the two parties' stated radii: a match only appears if both sides would
	// accept the distance.
	type scored struct {
		cand     Candidate
		distance float64
	}
	eligible := make([]scored, 0, len(pool))
	for _, cand := range pool {
		if cand.UserID == requesterID {
			continue
		}
		if mode == ModeInPerson {
			if cand.Latitude == nil || cand.Longitude == nil {
				continue
			}
			d := Haversine(origin.Latitude, origin.Longitude, *cand.Latitude, *cand.Longitude)
			maxKm := origin.MaxDistanceKm
			if cand.MaxDistanceKm < maxKm {
				maxKm = cand.MaxDistanceKm
			}
			if maxKm <= 0 || d > maxKm {
				continue
			}
			eligible = append(eligible, scored{cand: cand, distance: d})
		} else {
			eligible = append(eligible, scored{cand: cand})
		}
	}

	if len(eligible) == 0 {
		return []RankedCandidate{}, nil
	}

	ids := make([]uint, len(eligible))
	for i, e := range eligible {
		ids[i] = e.cand.UserID
	}
	// One bulk read for every surviving candidate's goal categories.
	categories, err := r.store.BatchGetActivePublicCategories(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}

	results := make([]RankedCandidate, 0, len(eligible))
	for _, e := range eligible {
		score, shared := Score(requesterCats, categories[e.cand.UserID])
		if mode == ModeInPerson {
			maxKm := origin.MaxDistanceKm
			if e.cand.MaxDistanceKm < maxKm {
				maxKm = e.cand.MaxDistanceKm
			}
			score *= ProximityWeight(e.distance, maxKm)
		}
		if score == 0 {
			continue
		}
		rc := RankedCandidate{
			UserID:           e.cand.UserID,
			Score:            score,
			SharedCategories: shared,
			LastActiveAt:     e.cand.LastActiveAt,
		}
		if mode == ModeInPerson {
			d := e.distance
			rc.DistanceKm = &d
		}
		results = append(results, rc)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if !a.LastActiveAt.Equal(b.LastActiveAt) {
			return a.LastActiveAt.After(b.LastActiveAt)
		}
		// Final anchor so repeated calls over the same snapshot agree.
		return a.UserID < b.UserID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// PairScore computes the score between two specific users, used to snapshot
// score_at_creation when a connection request is made.
func (r *Ranker) PairScore(ctx context.Context, userID, targetID uint, mode Mode) (float64, []models.GoalCategory, error) {
	if !mode.Valid() {
		return 0, nil, ErrInvalidMode
	}

	cats, err := r.store.BatchGetActivePublicCategories(ctx, []uint{userID, targetID})
	if err != nil {
		return 0, nil, unavailable(err)
	}
	score, shared := Score(cats[userID], cats[targetID])

	if mode == ModeInPerson && score > 0 {
		a, err := r.store.GetLocation(ctx, userID)
		if err != nil {
			return 0, nil, unavailable(err)
		}
		b, err := r.store.GetLocation(ctx, targetID)
		if err != nil {
			return 0, nil, unavailable(err)
		}
		if a == nil || b == nil {
			return 0, nil, nil
		}
		d := Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		maxKm := a.MaxDistanceKm
		if b.MaxDistanceKm < maxKm {
			maxKm = b.MaxDistanceKm
		}
		if maxKm <= 0 || d > maxKm {
			return 0, nil, nil
		}
		score *= ProximityWeight(d, maxKm)
	}

	return score, shared, nil
}

func unavailable(err error) error {
	return fmt.Errorf("ranking unavailable: %w", err)
}

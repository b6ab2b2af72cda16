// Package matching implements the compatibility scoring engine and the
// candidate ranker behind Aktiv's partner suggestions. The package is pure:
// it reads through an injected Store and never writes.
package matching

import (
	"math"
	"sort"

	"aktiv/internal/models"
)

// Mode selects which kind of partner the requester is looking for.
type Mode string

const (
	// ModeAccountability matches virtual check-in partners, scored purely on
	// goal-category overlap.
	ModeAccountability Mode = "accountability"
	// ModeInPerson matches geographically-local partners, scored on overlap
	// combined with distance decay.
	ModeInPerson Mode = "in_person"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAccountability || m == ModeInPerson
}

// CategorySet is a set of goal categories. Duplicate goals in the same
// category collapse to one membership.
type CategorySet map[models.GoalCategory]struct{}

// NewCategorySet builds a set from the given categories.
func NewCategorySet(categories ...models.GoalCategory) CategorySet {
	s := make(CategorySet, len(categories))
	for _, c := range categories {
		s[c] = struct{}{}
	}
	return s
}

// Score computes the Jaccard similarity between two users' category sets and
// returns the shared categories in stable order. Either set being empty
// yields 0 and no shared categories, so users with no public goals never
// produce false-positive matches.
func Score(requester, candidate CategorySet) (float64, []models.GoalCategory) {
	if len(requester) == 0 || len(candidate) == 0 {
		return 0, nil
	}

	var shared []models.GoalCategory
	for c := range requester {
		if _, ok := candidate[c]; ok {
			shared = append(shared, c)
		}
	}
	if len(shared) == 0 {
		return 0, nil
	}

	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })

	union := len(requester) + len(candidate) - len(shared)
	return float64(len(shared)) / float64(union), shared
}

// ProximityWeight decays linearly from 1.0 at distance 0 to 0.0 at
// distance == maxKm. Callers must not pass candidates beyond maxKm; the
// ranker filters those out before scoring.
func ProximityWeight(distanceKm, maxKm float64) float64 {
	if maxKm <= 0 {
		return 0
	}
	w := 1 - distanceKm/maxKm
	if w < 0 {
		return 0
	}
	return w
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

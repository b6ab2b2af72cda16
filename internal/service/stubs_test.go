package service

import (
	"context"
	"time"

	"aktiv/internal/matching"
	"aktiv/internal/models"
)

type matchRepoStub struct {
	createFn             func(context.Context, *models.Match) (*models.Match, error)
	getByIDFn            func(context.Context, uint) (*models.Match, error)
	getByPairFn          func(context.Context, uint, uint) (*models.Match, error)
	listForUserFn        func(context.Context, uint, models.MatchStatus) ([]models.Match, error)
	getPendingReceivedFn func(context.Context, uint) ([]models.Match, error)
	getPendingSentFn     func(context.Context, uint) ([]models.Match, error)
	updateStatusFn       func(context.Context, *models.Match, models.MatchStatus) error
	touchInteractionFn   func(context.Context, uint) error
	getPartnerIDsFn      func(context.Context, uint) (map[uint]struct{}, error)
}

func (s *matchRepoStub) Create(ctx context.Context, m *models.Match) (*models.Match, error) {
	return s.createFn(ctx, m)
}
func (s *matchRepoStub) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	return s.getByIDFn(ctx, id)
}
func (s *matchRepoStub) GetByPair(ctx context.Context, a, b uint) (*models.Match, error) {
	return s.getByPairFn(ctx, a, b)
}
func (s *matchRepoStub) ListForUser(ctx context.Context, userID uint, status models.MatchStatus) ([]models.Match, error) {
	return s.listForUserFn(ctx, userID, status)
}
func (s *matchRepoStub) GetPendingReceived(ctx context.Context, userID uint) ([]models.Match, error) {
	return s.getPendingReceivedFn(ctx, userID)
}
func (s *matchRepoStub) GetPendingSent(ctx context.Context, userID uint) ([]models.Match, error) {
	return s.getPendingSentFn(ctx, userID)
}
func (s *matchRepoStub) UpdateStatus(ctx context.Context, m *models.Match, next models.MatchStatus) error {
	return s.updateStatusFn(ctx, m, next)
}
func (s *matchRepoStub) TouchInteraction(ctx context.Context, matchID uint) error {
	if s.touchInteractionFn == nil {
		return nil
	}
	return s.touchInteractionFn(ctx, matchID)
}
func (s *matchRepoStub) GetPartnerIDs(ctx context.Context, userID uint) (map[uint]struct{}, error) {
	return s.getPartnerIDsFn(ctx, userID)
}

type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDsFn         func(context.Context, []uint) (map[uint]models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	updateLocationFn   func(context.Context, uint, *float64, *float64, float64) error
	touchLastActiveFn  func(context.Context, uint) error
	deleteFn           func(context.Context, uint) error
	listFn             func(context.Context, int, int) ([]models.User, error)
	searchFn           func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateLocation(ctx context.Context, id uint, lat, lon *float64, maxKm float64) error {
	return s.updateLocationFn(ctx, id, lat, lon, maxKm)
}
func (s *userRepoStub) TouchLastActive(ctx context.Context, id uint) error {
	if s.touchLastActiveFn == nil {
		return nil
	}
	return s.touchLastActiveFn(ctx, id)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}

type goalRepoStub struct {
	createFn                  func(context.Context, *models.Goal) error
	getByIDFn                 func(context.Context, uint) (*models.Goal, error)
	listByUserFn              func(context.Context, uint, models.GoalStatus) ([]models.Goal, error)
	listPublicActiveByUserFn  func(context.Context, uint, int) ([]models.Goal, error)
	listPublicActiveByUsersFn func(context.Context, []uint, int) (map[uint][]models.Goal, error)
	updateFn                  func(context.Context, *models.Goal) error
	deleteFn                  func(context.Context, uint) error
}

func (s *goalRepoStub) Create(ctx context.Context, goal *models.Goal) error {
	return s.createFn(ctx, goal)
}
func (s *goalRepoStub) GetByID(ctx context.Context, id uint) (*models.Goal, error) {
	return s.getByIDFn(ctx, id)
}
func (s *goalRepoStub) ListByUser(ctx context.Context, userID uint, status models.GoalStatus) ([]models.Goal, error) {
	return s.listByUserFn(ctx, userID, status)
}
func (s *goalRepoStub) ListPublicActiveByUser(ctx context.Context, userID uint, limit int) ([]models.Goal, error) {
	return s.listPublicActiveByUserFn(ctx, userID, limit)
}
func (s *goalRepoStub) ListPublicActiveByUsers(ctx context.Context, ids []uint, perUser int) (map[uint][]models.Goal, error) {
	return s.listPublicActiveByUsersFn(ctx, ids, perUser)
}
func (s *goalRepoStub) Update(ctx context.Context, goal *models.Goal) error {
	return s.updateFn(ctx, goal)
}
func (s *goalRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// rankStoreStub implements matching.Store for driving the ranker in tests.
type rankStoreStub struct {
	categories map[uint]matching.CategorySet
	locations  map[uint]*matching.Location
	exclusions map[uint]struct{}
	candidates []matching.Candidate
	err        error
}

func (s *rankStoreStub) GetActivePublicCategories(_ context.Context, userID uint) (matching.CategorySet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories[userID], nil
}
func (s *rankStoreStub) GetLocation(_ context.Context, userID uint) (*matching.Location, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.locations[userID], nil
}
func (s *rankStoreStub) GetExclusionSet(_ context.Context, _ uint) (map[uint]struct{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.exclusions, nil
}
func (s *rankStoreStub) ListCandidates(_ context.Context, _ matching.Mode, excluding map[uint]struct{}) ([]matching.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []matching.Candidate
	for _, c := range s.candidates {
		if _, skip := excluding[c.UserID]; !skip {
			out = append(out, c)
		}
	}
	return out, nil
}
func (s *rankStoreStub) BatchGetActivePublicCategories(_ context.Context, ids []uint) (map[uint]matching.CategorySet, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[uint]matching.CategorySet, len(ids))
	for _, id := range ids {
		if set, ok := s.categories[id]; ok {
			out[id] = set
		}
	}
	return out, nil
}

func activeCandidate(id uint) matching.Candidate {
	return matching.Candidate{UserID: id, MaxDistanceKm: 50, LastActiveAt: time.Now()}
}

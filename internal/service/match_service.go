// Package service implements the business logic between handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"aktiv/internal/cache"
	"aktiv/internal/matching"
	"aktiv/internal/middleware"
	"aktiv/internal/models"
	"aktiv/internal/notifications"
	"aktiv/internal/observability"
	"aktiv/internal/repository"
)

// Suggestion is one ranked partner suggestion enriched for display.
type Suggestion struct {
	matching.RankedCandidate
	User  *models.User  `json:"user,omitempty"`
	Goals []models.Goal `json:"goals,omitempty"`
}

// suggestionGoalsShown caps how many public goals each suggestion card carries.
const suggestionGoalsShown = 3

// MatchService provides partner suggestions and the match request lifecycle.
type MatchService struct {
	matchRepo repository.MatchRepository
	userRepo  repository.UserRepository
	goalRepo  repository.GoalRepository
	ranker    *matching.Ranker
	notifier  *notifications.Notifier
	maxLimit  int
}

// NewMatchService returns a new MatchService.
func NewMatchService(
	matchRepo repository.MatchRepository,
	userRepo repository.UserRepository,
	goalRepo repository.GoalRepository,
	ranker *matching.Ranker,
	notifier *notifications.Notifier,
	maxLimit int,
) *MatchService {
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &MatchService{
		matchRepo: matchRepo,
		userRepo:  userRepo,
		goalRepo:  goalRepo,
		ranker:    ranker,
		notifier:  notifier,
		maxLimit:  maxLimit,
	}
}

// GetSuggestions returns ranked partner suggestions for the user.
//
// Results are cached briefly per user and mode. The cache is never used to
// paper over a ranking failure: if the ranker errors, the caller gets the
// error even when a stale page exists.
func (s *MatchService) GetSuggestions(ctx context.Context, userID uint, mode matching.Mode, limit int) ([]Suggestion, error) {
	if !mode.Valid() {
		return nil, models.NewValidationError("mode must be 'accountability' or 'in_person'")
	}
	if limit <= 0 {
		limit = matching.DefaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	key := cache.SuggestionsKey(userID, string(mode))
	var cached []Suggestion
	if cache.GetJSON(ctx, key, &cached) {
		observability.RecordCacheLookup(true)
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}
	observability.RecordCacheLookup(false)

	start := time.Now()
	ranked, err := s.ranker.Rank(ctx, userID, mode, limit)
	if err != nil {
		return nil, models.NewUnavailableError("partner suggestions are temporarily unavailable", err)
	}
	observability.ObserveRanking(string(mode), len(ranked), start)

	suggestions, err := s.enrich(ctx, ranked)
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, key, suggestions, cache.SuggestionsTTL)
	return suggestions, nil
}

// enrich attaches user profiles and a few public goals to each ranked
// candidate using one read per table.
func (s *MatchService) enrich(ctx context.Context, ranked []matching.RankedCandidate) ([]Suggestion, error) {
	suggestions := make([]Suggestion, 0, len(ranked))
	if len(ranked) == 0 {
		return suggestions, nil
	}

	ids := make([]uint, len(ranked))
	for i, rc := range ranked {
		ids[i] = rc.UserID
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListPublicActiveByUsers(ctx, ids, suggestionGoalsShown)
	if err != nil {
		return nil, err
	}

	for _, rc := range ranked {
		sg := Suggestion{RankedCandidate: rc}
		if u, ok := users[rc.UserID]; ok {
			user := u
			sg.User = &user
		}
		sg.Goals = goals[rc.UserID]
		suggestions = append(suggestions, sg)
	}
	return suggestions, nil
}

// SendMatchRequest creates a pending edge toward the target and notifies them.
// The compatibility score is snapshotted at creation time.
func (s *MatchService) SendMatchRequest(ctx context.Context, userID, targetID uint, mode matching.Mode) (*models.Match, error) {
	if userID == targetID {
		return nil, models.NewValidationError("Cannot send a match request to yourself")
	}
	if !mode.Valid() {
		return nil, models.NewValidationError("mode must be 'accountability' or 'in_person'")
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	existing, err := s.matchRepo.GetByPair(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.MatchStatusAccepted:
			return nil, models.NewValidationError("You are already matched with this user")
		case models.MatchStatusPending:
			if existing.InitiatorID == userID {
				return nil, models.NewValidationError("Match request already sent")
			}
			return nil, models.NewValidationError("This user already sent you a match request")
		default:
			return nil, models.NewValidationError("This pair cannot be matched again")
		}
	}

	score, _, err := s.ranker.PairScore(ctx, userID, targetID, mode)
	if err != nil {
		return nil, models.NewUnavailableError("match request is temporarily unavailable", err)
	}

	match, err := s.matchRepo.Create(ctx, &models.Match{
		UserAID:         userID,
		UserBID:         targetID,
		InitiatorID:     userID,
		Status:          models.MatchStatusPending,
		IsInPerson:      mode == matching.ModeInPerson,
		ScoreAtCreation: score,
	})
	if err != nil {
		return nil, err
	}

	// A concurrent mutual request may have won the race; the surviving row is
	// what both sides see now.
	if match.InitiatorID == userID {
		observability.RecordMatchEvent("requested")
		s.notifyMatchEvent(ctx, targetID, notifications.EventMatchRequest, match, userID)
	}
	return match, nil
}

// AcceptMatchRequest accepts a pending request. Only the receiver may accept.
func (s *MatchService) AcceptMatchRequest(ctx context.Context, userID, matchID uint) (*models.Match, error) {
	match, err := s.pendingForReceiver(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateStatus(ctx, match, models.MatchStatusAccepted); err != nil {
		return nil, err
	}

	observability.RecordMatchEvent("accepted")
	s.notifyMatchEvent(ctx, match.InitiatorID, notifications.EventMatchAccepted, match, userID)
	return match, nil
}

// RejectMatchRequest declines a pending request. Only the receiver may reject.
// Rejection is terminal: the pair is never suggested again.
func (s *MatchService) RejectMatchRequest(ctx context.Context, userID, matchID uint) (*models.Match, error) {
	match, err := s.pendingForReceiver(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateStatus(ctx, match, models.MatchStatusRejected); err != nil {
		return nil, err
	}

	observability.RecordMatchEvent("rejected")
	s.notifyMatchEvent(ctx, match.InitiatorID, notifications.EventMatchRejected, match, userID)
	return match, nil
}

// EndMatch ends an accepted partnership. Either participant may end it.
func (s *MatchService) EndMatch(ctx context.Context, userID, matchID uint) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, models.NewUnauthorizedError("You are not part of this match")
	}
	if match.Status != models.MatchStatusAccepted {
		return nil, models.NewValidationError("Only an active match can be ended")
	}

	if err := s.matchRepo.UpdateStatus(ctx, match, models.MatchStatusBlocked); err != nil {
		return nil, err
	}

	observability.RecordMatchEvent("ended")
	s.notifyMatchEvent(ctx, match.OtherUser(userID), notifications.EventMatchEnded, match, userID)
	return match, nil
}

// GetMatches returns the user's match edges, optionally filtered by status.
func (s *MatchService) GetMatches(ctx context.Context, userID uint, status models.MatchStatus) ([]models.Match, error) {
	if status != "" {
		switch status {
		case models.MatchStatusPending, models.MatchStatusAccepted,
			models.MatchStatusRejected, models.MatchStatusBlocked:
		default:
			return nil, models.NewValidationError("unknown match status filter")
		}
	}
	return s.matchRepo.ListForUser(ctx, userID, status)
}

// GetPendingReceived returns requests awaiting the user's answer.
func (s *MatchService) GetPendingReceived(ctx context.Context, userID uint) ([]models.Match, error) {
	return s.matchRepo.GetPendingReceived(ctx, userID)
}

// GetPendingSent returns requests the user has sent and not yet answered.
func (s *MatchService) GetPendingSent(ctx context.Context, userID uint) ([]models.Match, error) {
	return s.matchRepo.GetPendingSent(ctx, userID)
}

func (s *MatchService) pendingForReceiver(ctx context.Context, userID, matchID uint) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, models.NewUnauthorizedError("You are not part of this match")
	}
	if match.InitiatorID == userID {
		return nil, models.NewUnauthorizedError("Only the receiver can answer a match request")
	}
	if match.Status != models.MatchStatusPending {
		return nil, models.NewValidationError("Match request is not pending")
	}
	return match, nil
}

func (s *MatchService) notifyMatchEvent(ctx context.Context, recipientID uint, eventType string, match *models.Match, actorID uint) {
	if s.notifier == nil {
		return
	}
	payload, err := notifications.Encode(eventType, notifications.MatchEventPayload{
		MatchID: match.ID,
		ActorID: actorID,
		Status:  string(match.Status),
		Score:   match.ScoreAtCreation,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode match event",
			slog.String("event", eventType), slog.String("error", err.Error()))
		return
	}
	if err := s.notifier.PublishUser(ctx, recipientID, payload); err != nil {
		// Notification delivery is best effort; the state change already
		// committed.
		middleware.Logger.WarnContext(ctx, "failed to publish match event",
			slog.String("event", eventType), slog.Any("recipient_id", recipientID),
			slog.String("error", err.Error()))
	}
}

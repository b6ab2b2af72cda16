package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	GoalsKeyPrefix       = "user:%d:goals"
	SuggestionsKeyPrefix = "suggestions:%d:%s"
)

const (
	UserTTL  = 5 * time.Minute
	GoalsTTL = 5 * time.Minute

	// SuggestionsTTL is short on purpose. Suggestions depend on other users'
	// goals and locations, which the owner's writes cannot invalidate.
	SuggestionsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func GoalsKey(userID uint) string {
	return fmt.Sprintf(GoalsKeyPrefix, userID)
}

func SuggestionsKey(userID uint, mode string) string {
	return fmt.Sprintf(SuggestionsKeyPrefix, userID, mode)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	InvalidateSuggestions(ctx, userID)
}

func InvalidateGoals(ctx context.Context, userID uint) {
	Invalidate(ctx, GoalsKey(userID))
	InvalidateSuggestions(ctx, userID)
}

// InvalidateSuggestions drops cached suggestion pages for both matching modes.
func InvalidateSuggestions(ctx context.Context, userID uint) {
	Invalidate(ctx, SuggestionsKey(userID, "accountability"))
	Invalidate(ctx, SuggestionsKey(userID, "in_person"))
}

// Aside implements the cache-aside pattern: return the cached value if
// present, otherwise run fetch to populate dest and cache the result.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	if GetJSON(ctx, key, dest) {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	SetJSON(ctx, key, dest, ttl)
	return nil
}

// GetJSON reads a cached value into dest. Returns false on miss, absent client,
// or a decode failure (treated as a miss so the caller recomputes).
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON caches a JSON-encoded value with a TTL. Failures are silent: the
// cache is an optimization, never a source of truth.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

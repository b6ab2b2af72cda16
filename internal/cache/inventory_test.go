package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "user:7:goals", GoalsKey(7))
	assert.Equal(t, "suggestions:7:in_person", SuggestionsKey(7, "in_person"))
}

func TestJSONRoundTrip(t *testing.T) {
	useTestRedis(t)
	ctx := context.Background()

	type page struct {
		IDs []uint `json:"ids"`
	}

	SetJSON(ctx, SuggestionsKey(1, "accountability"), page{IDs: []uint{2, 3}}, SuggestionsTTL)

	var got page
	require.True(t, GetJSON(ctx, SuggestionsKey(1, "accountability"), &got))
	assert.Equal(t, []uint{2, 3}, got.IDs)

	// Miss on a different mode key.
	assert.False(t, GetJSON(ctx, SuggestionsKey(1, "in_person"), &got))
}

func TestGetJSONCorruptEntryIsMiss(t *testing.T) {
	mr := useTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(5), "{not json"))

	var dest map[string]any
	assert.False(t, GetJSON(ctx, UserKey(5), &dest))
	// Corrupt entries are evicted.
	assert.False(t, mr.Exists(UserKey(5)))
}

func TestInvalidateSuggestionsBothModes(t *testing.T) {
	mr := useTestRedis(t)
	ctx := context.Background()

	SetJSON(ctx, SuggestionsKey(9, "accountability"), []uint{1}, time.Minute)
	SetJSON(ctx, SuggestionsKey(9, "in_person"), []uint{2}, time.Minute)

	InvalidateSuggestions(ctx, 9)

	assert.False(t, mr.Exists(SuggestionsKey(9, "accountability")))
	assert.False(t, mr.Exists(SuggestionsKey(9, "in_person")))
}

func TestHelpersNilClientAreNoops(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	SetJSON(ctx, "k", 1, time.Minute)
	Invalidate(ctx, "k")
	var dest int
	assert.False(t, GetJSON(ctx, "k", &dest))
}

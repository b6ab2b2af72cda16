package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()

	c1, err := hub.Register(1, nil)
	require.NoError(t, err)
	c2, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.ConnectionCount(1))
	assert.True(t, hub.IsOnline(1))

	hub.Broadcast(1, "hello")

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Fatal("expected a message on the client send buffer")
		}
	}
	select {
	case <-other.Send:
		t.Fatal("user 2 must not receive user 1 messages")
	default:
	}

	hub.UnregisterClient(c1)
	hub.UnregisterClient(c2)
	assert.Equal(t, 0, hub.ConnectionCount(1))
	assert.False(t, hub.IsOnline(1))
	assert.True(t, hub.IsOnline(2))
}

func TestHubPerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}

	_, err := hub.Register(7, nil)
	require.Error(t, err)

	// Other users are unaffected.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHubWiringDeliversUserEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hub := NewHub(rdb)
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(42, nil)
	require.NoError(t, err)

	payload, err := Encode(EventMatchRequest, MatchEventPayload{MatchID: 5, ActorID: 9, Status: "pending"})
	require.NoError(t, err)
	require.NoError(t, notifier.PublishUser(ctx, 42, payload))

	select {
	case raw := <-client.Send:
		var evt Event
		require.NoError(t, json.Unmarshal(raw, &evt))
		assert.Equal(t, EventMatchRequest, evt.Type)

		var p MatchEventPayload
		require.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.EqualValues(t, 5, p.MatchID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the wired event")
	}
}

func TestNotifierNilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()
	assert.NoError(t, n.PublishUser(ctx, 1, "x"))
	assert.NoError(t, n.PublishBroadcast(ctx, "x"))
	assert.NoError(t, n.StartPatternSubscriber(ctx, nil))
}

func TestParseUserChannel(t *testing.T) {
	id, err := ParseUserChannel(UserChannel(31))
	require.NoError(t, err)
	assert.EqualValues(t, 31, id)

	_, err = ParseUserChannel("chat:room:5")
	assert.Error(t, err)
}

package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceTTL = 90 * time.Second
)

// PresenceManager tracks which users are online. With Redis it works across
// instances via SETEX keys; without it falls back to a local map.
type PresenceManager struct {
	rdb *redis.Client

	mu    sync.RWMutex
	local map[uint]time.Time
}

// NewPresenceManager returns a PresenceManager. rdb may be nil.
func NewPresenceManager(rdb *redis.Client) *PresenceManager {
	return &PresenceManager{
		rdb:   rdb,
		local: make(map[uint]time.Time),
	}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

// Register marks the user online.
func (p *PresenceManager) Register(ctx context.Context, userID uint) {
	if p.rdb != nil {
		p.rdb.Set(ctx, presenceKey(userID), "1", presenceTTL)
		return
	}
	p.mu.Lock()
	p.local[userID] = time.Now()
	p.mu.Unlock()
}

// Touch refreshes the user's online TTL on activity.
func (p *PresenceManager) Touch(ctx context.Context, userID uint) {
	p.Register(ctx, userID)
}

// Unregister marks the user offline.
func (p *PresenceManager) Unregister(ctx context.Context, userID uint) {
	if p.rdb != nil {
		p.rdb.Del(ctx, presenceKey(userID))
		return
	}
	p.mu.Lock()
	delete(p.local, userID)
	p.mu.Unlock()
}

// IsOnline reports whether the user currently counts as online.
func (p *PresenceManager) IsOnline(ctx context.Context, userID uint) bool {
	if p.rdb != nil {
		n, err := p.rdb.Exists(ctx, presenceKey(userID)).Result()
		return err == nil && n > 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	last, ok := p.local[userID]
	return ok && time.Since(last) < presenceTTL
}

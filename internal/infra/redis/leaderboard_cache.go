// Package redis provides an optional Redis cache in front of the
// leaderboard query.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-miniapp-service/internal/app"
	"trivia-miniapp-service/internal/domain"
)

// LeaderboardCache caches marshaled top-N snapshots with a short TTL and
// falls back to the inner provider on miss. Key: leaderboard:top:{n}.
type LeaderboardCache struct {
	client *redis.Client
	inner  app.LeaderboardProvider
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, inner app.LeaderboardProvider, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	key := fmt.Sprintf("leaderboard:top:%d", n)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache entry; fall through and refill.
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var entries []domain.LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
		}

		entries, err := c.inner.Leaderboard(ctx, n)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(entries); err == nil {
			// Cache write is best-effort; a miss just hits the store again.
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"gamification-engine/internal/app"
	"gamification-engine/internal/domain"
)

// cacheDepth is how many standings a cached snapshot holds. Requests deeper
// than this bypass the cache.
const cacheDepth = 100

// LeaderboardCache decorates a LeaderboardRepository with a Redis snapshot
// cache for Top reads. Writes pass through and invalidate the affected
// window; singleflight keeps a cold key from stampeding the database.
type LeaderboardCache struct {
	inner  app.LeaderboardRepository
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewLeaderboardCache(inner app.LeaderboardRepository, client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func (c *LeaderboardCache) AddPoints(ctx context.Context, entry domain.LeaderboardEntry) error {
	if err := c.inner.AddPoints(ctx, entry); err != nil {
		return err
	}
	// Best-effort invalidation; a stale snapshot only lives until the TTL.
	_ = c.client.Del(ctx, c.key(entry.GameID, entry.Period, entry.WindowStart)).Err()
	return nil
}

func (c *LeaderboardCache) Top(ctx context.Context, gameID string, period domain.Period, windowStart time.Time, limit int) ([]domain.Standing, error) {
	if limit <= 0 || limit > cacheDepth {
		return c.inner.Top(ctx, gameID, period, windowStart, limit)
	}

	key := c.key(gameID, period, windowStart)
	if standings, ok := c.cached(ctx, key); ok {
		return clip(standings, limit), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if standings, ok := c.cached(ctx, key); ok {
			return standings, nil
		}
		standings, err := c.inner.Top(ctx, gameID, period, windowStart, cacheDepth)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(standings); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return standings, nil
	})
	if err != nil {
		return nil, err
	}
	return clip(result.([]domain.Standing), limit), nil
}

func (c *LeaderboardCache) Rank(ctx context.Context, userID, gameID string, period domain.Period, windowStart time.Time) (domain.Standing, error) {
	return c.inner.Rank(ctx, userID, gameID, period, windowStart)
}

func (c *LeaderboardCache) cached(ctx context.Context, key string) ([]domain.Standing, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var standings []domain.Standing
	if err := json.Unmarshal(data, &standings); err != nil {
		return nil, false
	}
	return standings, true
}

func (c *LeaderboardCache) key(gameID string, period domain.Period, windowStart time.Time) string {
	return "lb:" + gameID + ":" + string(period) + ":" + strconv.FormatInt(windowStart.Unix(), 10)
}

func clip(standings []domain.Standing, limit int) []domain.Standing {
	if limit > 0 && len(standings) > limit {
		return standings[:limit]
	}
	return standings
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

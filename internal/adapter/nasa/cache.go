package nasa

import (
	"context"
	"time"

	"github.com/couchcryptid/meteor-impact-service/internal/adapter/cache"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// CachedFeed wraps an AsteroidFeed with an in-memory LRU keyed by date window.
type CachedFeed struct {
	inner   domain.AsteroidFeed
	cache   *cache.LRU[string, []domain.Asteroid]
	metrics *observability.Metrics
}

// NewCachedFeed creates a cache decorator around a feed.
func NewCachedFeed(inner domain.AsteroidFeed, maxEntries int, metrics *observability.Metrics) *CachedFeed {
	return &CachedFeed{
		inner:   inner,
		cache:   cache.NewLRU[string, []domain.Asteroid](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFeed) Asteroids(ctx context.Context, start, end time.Time) ([]domain.Asteroid, error) {
	key := start.Format(dateLayout) + "|" + end.Format(dateLayout)
	if result, ok := c.cache.Get(key); ok {
		c.metrics.FeedCache.WithLabelValues(feedLabel, "hit").Inc()
		return result, nil
	}
	c.metrics.FeedCache.WithLabelValues(feedLabel, "miss").Inc()

	result, err := c.inner.Asteroids(ctx, start, end)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so an empty upstream response is retried.
	if len(result) > 0 {
		c.cache.Put(key, result)
	}
	return result, nil
}

package usgs

import (
	"context"
	"fmt"

	"github.com/couchcryptid/meteor-impact-service/internal/adapter/cache"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// CachedSource wraps an ElevationSource with an in-memory LRU keyed by coordinate.
type CachedSource struct {
	inner   domain.ElevationSource
	cache   *cache.LRU[string, domain.Elevation]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around an elevation source.
func NewCachedSource(inner domain.ElevationSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   cache.NewLRU[string, domain.Elevation](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Elevation(ctx context.Context, lat, lng float64) (domain.Elevation, error) {
	// Six decimal places is roughly 0.1 m, well below EPQS resolution.
	key := fmt.Sprintf("%.6f,%.6f", lat, lng)
	if result, ok := c.cache.Get(key); ok {
		c.metrics.FeedCache.WithLabelValues(feedLabel, "hit").Inc()
		return result, nil
	}
	c.metrics.FeedCache.WithLabelValues(feedLabel, "miss").Inc()

	result, err := c.inner.Elevation(ctx, lat, lng)
	if err != nil {
		return result, err
	}
	c.cache.Put(key, result)
	return result, nil
}

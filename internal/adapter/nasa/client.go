// Package nasa reads near-earth-object close approaches from the NASA NeoWs feed.
package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

const (
	feedLabel  = "nasa"
	dateLayout = "2006-01-02"
)

// Client implements domain.AsteroidFeed using the NeoWs feed endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs client allowing ratePerSecond upstream requests.
func NewClient(apiKey, baseURL string, timeout time.Duration, ratePerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Asteroids lists objects with close approaches between start and end,
// grouped by approach date in ascending order. Entries missing any required
// field are skipped.
func (c *Client) Asteroids(ctx context.Context, start, end time.Time) ([]domain.Asteroid, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("nasa rate limit: %w", err)
		}
	}

	params := url.Values{
		"start_date": {start.Format(dateLayout)},
		"end_date":   {end.Format(dateLayout)},
		"api_key":    {c.apiKey},
	}

	began := time.Now()
	feed, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.FeedAPIDuration.WithLabelValues(feedLabel).Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues(feedLabel, "error").Inc()
		return nil, err
	}
	c.metrics.FeedRequests.WithLabelValues(feedLabel, "success").Inc()

	asteroids, skipped := reshape(feed)
	if skipped > 0 {
		c.logger.Debug("skipped incomplete near-earth objects", "count", skipped)
	}
	return asteroids, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (feedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return feedResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return feedResponse{}, fmt.Errorf("neo feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return feedResponse{}, fmt.Errorf("nasa API error: status %d: %s", resp.StatusCode, body)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return feedResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return feed, nil
}

// reshape flattens the date-keyed feed. It returns the asteroids and the
// number of entries that were dropped.
func reshape(feed feedResponse) ([]domain.Asteroid, int) {
	var (
		out     []domain.Asteroid
		skipped int
	)
	for _, d := range slices.Sorted(maps.Keys(feed.NearEarthObjects)) {
		for _, obj := range feed.NearEarthObjects[d] {
			a, ok := obj.toAsteroid()
			if !ok {
				skipped++
				continue
			}
			out = append(out, a)
		}
	}
	if out == nil {
		out = []domain.Asteroid{}
	}
	return out, skipped
}

// NeoWs API response types.

type feedResponse struct {
	NearEarthObjects map[string][]nearEarthObject `json:"near_earth_objects"`
}

type nearEarthObject struct {
	Name              string             `json:"name"`
	EstimatedDiameter *estimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []closeApproach    `json:"close_approach_data"`
	Hazardous         *bool              `json:"is_potentially_hazardous_asteroid"`
}

type estimatedDiameter struct {
	Kilometers *struct {
		Max *float64 `json:"estimated_diameter_max"`
	} `json:"kilometers"`
}

type closeApproach struct {
	RelativeVelocity struct {
		KilometersPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
}

func (o nearEarthObject) toAsteroid() (domain.Asteroid, bool) {
	if o.Name == "" || o.Hazardous == nil || len(o.CloseApproachData) == 0 {
		return domain.Asteroid{}, false
	}
	if o.EstimatedDiameter == nil || o.EstimatedDiameter.Kilometers == nil || o.EstimatedDiameter.Kilometers.Max == nil {
		return domain.Asteroid{}, false
	}

	approach := o.CloseApproachData[0]
	velocity, err := strconv.ParseFloat(approach.RelativeVelocity.KilometersPerSecond, 64)
	if err != nil {
		return domain.Asteroid{}, false
	}
	distance, err := strconv.ParseFloat(approach.MissDistance.Kilometers, 64)
	if err != nil {
		return domain.Asteroid{}, false
	}

	return domain.Asteroid{
		Name:           o.Name,
		DiameterKm:     domain.Round3(*o.EstimatedDiameter.Kilometers.Max),
		VelocityKmPerS: domain.Round2(velocity),
		DistanceKm:     domain.Round2(distance),
		Hazardous:      *o.Hazardous,
	}, true
}

// Package usgs looks up ground elevation from the USGS Elevation Point Query Service.
package usgs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

const feedLabel = "usgs"

// noDataSentinel is the value EPQS returns for coordinates outside coverage.
const noDataSentinel = -1000000

// ErrNoData is returned when EPQS has no elevation for a coordinate.
var ErrNoData = errors.New("no elevation data for coordinate")

// Client implements domain.ElevationSource using EPQS.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an EPQS client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Elevation returns the ground elevation in meters at lat, lng.
func (c *Client) Elevation(ctx context.Context, lat, lng float64) (domain.Elevation, error) {
	// EPQS uses x=lon, y=lat.
	params := url.Values{
		"x":      {strconv.FormatFloat(lng, 'f', -1, 64)},
		"y":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"units":  {"Meters"},
		"wkid":   {"4326"},
		"output": {"json"},
	}

	began := time.Now()
	meters, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.FeedAPIDuration.WithLabelValues(feedLabel).Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FeedRequests.WithLabelValues(feedLabel, "error").Inc()
		return domain.Elevation{}, err
	}
	c.metrics.FeedRequests.WithLabelValues(feedLabel, "success").Inc()

	return domain.Elevation{
		Latitude:        lat,
		Longitude:       lng,
		ElevationMeters: meters,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var epqs response
	if err := json.NewDecoder(resp.Body).Decode(&epqs); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	raw := epqs.Value
	if len(raw) == 0 && epqs.Legacy != nil {
		raw = epqs.Legacy.ElevationQuery.Elevation
	}
	meters, err := parseElevation(raw)
	if err != nil {
		return 0, err
	}
	if meters <= noDataSentinel {
		return 0, ErrNoData
	}
	return meters, nil
}

// parseElevation accepts an elevation encoded as a JSON number or a quoted number.
func parseElevation(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("elevation missing from response")
	}
	s := string(bytes.Trim(raw, `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse elevation %q: %w", s, err)
	}
	return v, nil
}

// EPQS response types. The v1 service returns "value"; the retired pqs.php
// endpoint nests the elevation under USGS_Elevation_Point_Query_Service.

type response struct {
	Value  json.RawMessage `json:"value"`
	Legacy *legacyResponse `json:"USGS_Elevation_Point_Query_Service"`
}

type legacyResponse struct {
	ElevationQuery struct {
		Elevation json.RawMessage `json:"Elevation"`
	} `json:"Elevation_Query"`
}

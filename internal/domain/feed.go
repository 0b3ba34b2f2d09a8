package domain

import (
	"context"
	"time"
)

// FeedWindowDays is the look-ahead used when querying the near-earth-object feed.
const FeedWindowDays = 3

// Asteroid is a near-earth object reshaped from the NASA NeoWs feed.
type Asteroid struct {
	Name           string          `json:"name"`
	DiameterKm     float64         `json:"diameter_km"`
	VelocityKmPerS float64         `json:"velocity_kms"`
	DistanceKm     float64         `json:"distance_km"`
	Hazardous      bool            `json:"hazardous"`
	Impact         *ImpactEstimate `json:"impact,omitempty"`
}

// Elevation is a ground elevation for a single coordinate.
type Elevation struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	ElevationMeters float64 `json:"elevation_meters"`
}

// AsteroidFeed lists near-earth objects with close approaches in [start, end].
type AsteroidFeed interface {
	Asteroids(ctx context.Context, start, end time.Time) ([]Asteroid, error)
}

// ElevationSource looks up the ground elevation at a coordinate.
type ElevationSource interface {
	Elevation(ctx context.Context, lat, lng float64) (Elevation, error)
}

// FeedWindow returns the [today, today+FeedWindowDays] UTC date window based
// on the package clock.
func FeedWindow() (time.Time, time.Time) {
	now := Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, FeedWindowDays)
}

// WithImpact attaches an estimate to each asteroid, treating the maximum
// estimated diameter as the impactor's diameter. Asteroids whose parameters
// cannot be estimated are left without one.
func WithImpact(asteroids []Asteroid, densityKgPerM3 float64) []Asteroid {
	out := make([]Asteroid, len(asteroids))
	for i, a := range asteroids {
		req := ImpactRequest{
			RadiusKm:       a.DiameterKm / 2,
			VelocityKmPerS: a.VelocityKmPerS,
			DensityKgPerM3: densityKgPerM3,
		}
		if est, err := Estimate(req); err == nil {
			rounded := est.Rounded()
			a.Impact = &rounded
		}
		out[i] = a
	}
	return out
}

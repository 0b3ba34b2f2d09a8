package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSiteRadiusKm is used when a site is recorded without a radius.
const DefaultSiteRadiusKm = 50.0

// ImpactSite is a named impact location kept for display.
type ImpactSite struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius"`
}

// SiteStore persists impact sites.
type SiteStore interface {
	List(ctx context.Context) ([]ImpactSite, error)
	Create(ctx context.Context, site ImpactSite) (ImpactSite, error)
	Clear(ctx context.Context) (int64, error)
}

// Site event types.
const (
	SiteCreated  = "site.created"
	SitesCleared = "sites.cleared"
)

// SiteEvent announces a change to the impact-site records.
type SiteEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Site       *ImpactSite `json:"site,omitempty"`
	Removed    int64       `json:"removed,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// SiteEventPublisher forwards site events to interested consumers.
type SiteEventPublisher interface {
	PublishSiteEvent(ctx context.Context, event SiteEvent) error
}

// NewSiteCreatedEvent wraps a freshly stored site in an event.
func NewSiteCreatedEvent(site ImpactSite) SiteEvent {
	return SiteEvent{
		ID:         uuid.NewString(),
		Type:       SiteCreated,
		Site:       &site,
		OccurredAt: Now(),
	}
}

// NewSitesClearedEvent records a bulk removal of removed sites.
func NewSitesClearedEvent(removed int64) SiteEvent {
	return SiteEvent{
		ID:         uuid.NewString(),
		Type:       SitesCleared,
		Removed:    removed,
		OccurredAt: Now(),
	}
}

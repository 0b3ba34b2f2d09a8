package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

func TestSerializeToMessage_SiteCreated(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	event := domain.SiteEvent{
		ID:         "evt-1",
		Type:       domain.SiteCreated,
		Site:       &domain.ImpactSite{ID: 42, Name: "Chicxulub", Lat: 21.4, Lng: -89.5, RadiusKm: 90},
		OccurredAt: now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.Contains(t, string(msg.Value), `"type":"site.created"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.SiteCreated), msg.Headers[0].Value)
	assert.Equal(t, "occurred_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.SiteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.NotNil(t, decoded.Site)
	assert.Equal(t, "Chicxulub", decoded.Site.Name)
}

func TestSerializeToMessage_SitesClearedKeyedByEventID(t *testing.T) {
	event := domain.SiteEvent{ID: "evt-2", Type: domain.SitesCleared, Removed: 5}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-2"), msg.Key)
	assert.Contains(t, string(msg.Value), `"removed":5`)
	assert.NotContains(t, string(msg.Value), `"site"`)
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	require.NoError(t, p.PublishSiteEvent(context.Background(), domain.SiteEvent{}))
	require.NoError(t, p.Close())
}

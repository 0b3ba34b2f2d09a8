package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/meteor-impact-service/internal/adapter/http"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// --- fakes ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fakeStore struct {
	mu     sync.Mutex
	sites  []domain.ImpactSite
	nextID int64
	err    error
}

func (f *fakeStore) List(_ context.Context) ([]domain.ImpactSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.ImpactSite{}, f.sites...), nil
}

func (f *fakeStore) Create(_ context.Context, site domain.ImpactSite) (domain.ImpactSite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.ImpactSite{}, f.err
	}
	f.nextID++
	site.ID = f.nextID
	f.sites = append(f.sites, site)
	return site, nil
}

func (f *fakeStore) Clear(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := int64(len(f.sites))
	f.sites = nil
	return n, nil
}

type fakeFeed struct {
	asteroids  []domain.Asteroid
	err        error
	start, end time.Time
}

func (f *fakeFeed) Asteroids(_ context.Context, start, end time.Time) ([]domain.Asteroid, error) {
	f.start, f.end = start, end
	return f.asteroids, f.err
}

type fakeElevation struct {
	meters float64
	err    error
}

func (f *fakeElevation) Elevation(_ context.Context, lat, lng float64) (domain.Elevation, error) {
	if f.err != nil {
		return domain.Elevation{}, f.err
	}
	return domain.Elevation{Latitude: lat, Longitude: lng, ElevationMeters: f.meters}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SiteEvent
	err    error
}

func (p *recordingPublisher) PublishSiteEvent(_ context.Context, e domain.SiteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type testEnv struct {
	srv       *httpadapter.Server
	store     *fakeStore
	feed      *fakeFeed
	elevation *fakeElevation
	events    *recordingPublisher
	ready     *mockReadiness
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:     &fakeStore{},
		feed:      &fakeFeed{},
		elevation: &fakeElevation{},
		events:    &recordingPublisher{},
		ready:     &mockReadiness{},
	}
	env.srv = httpadapter.NewServer(":0", httpadapter.Deps{
		Sites:          env.store,
		Asteroids:      env.feed,
		Elevation:      env.elevation,
		Events:         env.events,
		Ready:          env.ready,
		Metrics:        observability.NewMetricsForTesting(),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultDensity: domain.DefaultDensityKgPerM3,
	})
	return env
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// --- health, readiness, metrics ---

func TestRootReturnsLiveMessage(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "Meteor impact API is live", body["message"])
}

func TestUnknownPathReturns404(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	env := newTestEnv()
	env.ready.err = fmt.Errorf("site database unavailable")

	rec := env.do(http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "site database unavailable", body["error"])
}

func TestReadyzWithoutCheckerReportsReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", httpadapter.Deps{
		Metrics: observability.NewMetricsForTesting(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestEnv().do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodOptions, "/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	env.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStoreFailureReturns500(t *testing.T) {
	env := newTestEnv()
	env.store.err = errors.New("disk I/O error")

	rec := env.do(http.MethodGet, "/meteors", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], "disk I/O error")
}

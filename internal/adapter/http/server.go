package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// alwaysReady is used when no readiness dependency is configured.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

// Deps are the collaborators the API routes call into.
type Deps struct {
	Sites     domain.SiteStore
	Asteroids domain.AsteroidFeed
	Elevation domain.ElevationSource
	Events    domain.SiteEventPublisher
	Ready     ReadinessChecker
	Metrics   *observability.Metrics
	Logger    *slog.Logger

	// DefaultDensity is applied when a simulation omits density.
	DefaultDensity float64
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
}

// Server exposes the impact API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, deps Deps) *Server {
	if deps.DefaultDensity <= 0 {
		deps.DefaultDensity = domain.DefaultDensityKgPerM3
	}
	if deps.Ready == nil {
		deps.Ready = alwaysReady{}
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}

	mux := http.NewServeMux()
	c := cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      c.Handler(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: deps.Logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /simulate", s.handleSimulate)
	mux.HandleFunc("GET /meteors", s.handleListSites)
	mux.HandleFunc("POST /meteors", s.handleCreateSite)
	mux.HandleFunc("DELETE /meteors", s.handleClearSites)
	mux.HandleFunc("GET /nasa-asteroids", s.handleAsteroids)
	mux.HandleFunc("GET /terrain", s.handleTerrain)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meteor impact API is live"})
}

// encodeFailureBody is sent when a response value cannot be encoded.
const encodeFailureBody = `{"error":"failed to encode response"}`

// writeJSON marshals v before writing the status. A value that cannot be
// encoded is answered with a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(encodeFailureBody)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n')) //nolint:errcheck // client may have gone away
}

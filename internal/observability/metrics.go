package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the impact service.
type Metrics struct {
	// Simulation metrics.
	Simulations       *prometheus.CounterVec // labels: severity={Low,Moderate,High,Catastrophic}
	InvalidParameters *prometheus.CounterVec // labels: field

	// Upstream feed metrics.
	FeedRequests    *prometheus.CounterVec   // labels: feed={nasa,usgs}, outcome={success,error}
	FeedCache       *prometheus.CounterVec   // labels: feed={nasa,usgs}, result={hit,miss}
	FeedAPIDuration *prometheus.HistogramVec // labels: feed={nasa,usgs}

	// Site metrics.
	SitesCreated       prometheus.Counter
	SiteEventsProduced *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Simulations,
		m.InvalidParameters,
		m.FeedRequests,
		m.FeedCache,
		m.FeedAPIDuration,
		m.SitesCreated,
		m.SiteEventsProduced,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "simulations_total",
			Help:      "Completed impact simulations by severity tier.",
		}, []string{"severity"}),
		InvalidParameters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "invalid_parameters_total",
			Help:      "Rejected simulation requests by offending field.",
		}, []string{"field"}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "feed_requests_total",
			Help:      "Upstream feed requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		FeedCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "feed_cache_total",
			Help:      "Feed cache lookups by feed and result.",
		}, []string{"feed", "result"}),
		FeedAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteor_impact",
			Name:      "feed_api_duration_seconds",
			Help:      "Upstream feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"feed"}),
		SitesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "sites_created_total",
			Help:      "Impact sites recorded.",
		}),
		SiteEventsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteor_impact",
			Name:      "site_events_produced_total",
			Help:      "Site events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

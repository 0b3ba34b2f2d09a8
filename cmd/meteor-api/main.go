package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/meteor-impact-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/meteor-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/meteor-impact-service/internal/adapter/nasa"
	"github.com/couchcryptid/meteor-impact-service/internal/adapter/sqlite"
	"github.com/couchcryptid/meteor-impact-service/internal/adapter/usgs"
	"github.com/couchcryptid/meteor-impact-service/internal/config"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
	"github.com/couchcryptid/meteor-impact-service/internal/observability"
)

type siteEventWriter interface {
	domain.SiteEventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open site database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}

	neo := nasa.NewClient(cfg.NASAAPIKey, cfg.NASABaseURL, cfg.NASATimeout, cfg.NASARateLimit, metrics, logger)
	elevation := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, metrics, logger)

	// Site events are feature-flagged via KAFKA_ENABLED.
	var events siteEventWriter = kafkaadapter.NoopPublisher{}
	if cfg.KafkaEnabled {
		events = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("site events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSiteTopic)
	} else {
		logger.Info("site events disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Sites:          store,
		Asteroids:      nasa.NewCachedFeed(neo, cfg.FeedCacheSize, metrics),
		Elevation:      usgs.NewCachedSource(elevation, cfg.FeedCacheSize, metrics),
		Events:         events,
		Ready:          store,
		Metrics:        metrics,
		Logger:         logger,
		DefaultDensity: cfg.DefaultDensity,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("site database close error", "error", err)
	}

	logger.Info("shutdown complete")
}

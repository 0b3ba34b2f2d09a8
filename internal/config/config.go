package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DefaultDensity is applied to simulations that omit a density.
	DefaultDensity float64

	DatabasePath       string
	CORSAllowedOrigins []string

	// NASA NeoWs feed configuration.
	NASAAPIKey    string
	NASABaseURL   string
	NASATimeout   time.Duration
	NASARateLimit float64

	// USGS elevation configuration.
	USGSBaseURL string
	USGSTimeout time.Duration

	FeedCacheSize int

	// Site event publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSiteTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	density, err := parsePositiveFloat("IMPACT_DEFAULT_DENSITY", domain.DefaultDensityKgPerM3)
	if err != nil {
		return nil, err
	}

	nasaTimeout, err := parseTimeout("NASA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parseTimeout("USGS_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	nasaRate, err := parsePositiveFloat("NASA_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8000"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		DefaultDensity:     density,
		DatabasePath:       sharedcfg.EnvOrDefault("DATABASE_PATH", "meteor.db"),
		CORSAllowedOrigins: parseList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		NASAAPIKey:    sharedcfg.EnvOrDefault("NASA_API_KEY", "DEMO_KEY"),
		NASABaseURL:   sharedcfg.EnvOrDefault("NASA_BASE_URL", "https://api.nasa.gov/neo/rest/v1/feed"),
		NASATimeout:   nasaTimeout,
		NASARateLimit: nasaRate,

		USGSBaseURL: sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://epqs.nationalmap.gov/v1/json"),
		USGSTimeout: usgsTimeout,

		FeedCacheSize: parseFeedCacheSize(),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSiteTopic: sharedcfg.EnvOrDefault("KAFKA_SITE_TOPIC", "impact-site-events"),
	}

	if cfg.DatabasePath == "" {
		return nil, errors.New("DATABASE_PATH is required")
	}
	if cfg.NASAAPIKey == "" {
		return nil, errors.New("NASA_API_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSiteTopic == "" {
		return nil, errors.New("KAFKA_SITE_TOPIC is required")
	}

	return cfg, nil
}

func parseTimeout(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return v, nil
}

func parseFeedCacheSize() int {
	if s := os.Getenv("FEED_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

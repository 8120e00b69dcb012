package config

import (
	"errors"
	"os"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Evaluation cycle.
	RefreshInterval  time.Duration
	PsiS             float64 // default solar pressure proxy for scheduled refreshes
	CoherenceSamples int

	// INGV catalog query.
	INGVBaseURL     string
	INGVTimeout     time.Duration
	MinLat, MaxLat  float64
	MinLon, MaxLon  float64
	Lookback        time.Duration
	CatalogCacheTTL time.Duration

	// NOAA planetary K-index feed.
	NOAAKpURL   string
	NOAATimeout time.Duration
	KpFallback  float64
	KpCacheTTL  time.Duration

	// Local fallback catalog. The column overrides pin exact header names
	// when the loose alias matching cannot resolve a nonstandard export.
	LocalCatalogPath string
	TimeColumn       string
	MagnitudeColumn  string
	DepthColumn      string

	// Optional Kafka bundle publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
// Defaults target the Campi Flegrei bounding box monitored by the original
// continuum deployment.
func Load() (*Config, error) {
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := durationEnv("REFRESH_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}
	psiS, err := floatEnv("PSI_S", 0.72, 0, 1)
	if err != nil {
		return nil, err
	}
	coherenceSamples, err := intEnv("COHERENCE_SAMPLES", 24, 1000)
	if err != nil {
		return nil, err
	}

	ingvTimeout, err := durationEnv("INGV_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	minLat, err := floatEnv("BBOX_MIN_LAT", 40.79, -90, 90)
	if err != nil {
		return nil, err
	}
	maxLat, err := floatEnv("BBOX_MAX_LAT", 40.84, -90, 90)
	if err != nil {
		return nil, err
	}
	minLon, err := floatEnv("BBOX_MIN_LON", 14.10, -180, 180)
	if err != nil {
		return nil, err
	}
	maxLon, err := floatEnv("BBOX_MAX_LON", 14.15, -180, 180)
	if err != nil {
		return nil, err
	}
	lookback, err := durationEnv("LOOKBACK", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	catalogTTL, err := durationEnv("CATALOG_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	noaaTimeout, err := durationEnv("NOAA_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	kpFallback, err := floatEnv("KP_FALLBACK", 3.0, 0, 9)
	if err != nil {
		return nil, err
	}
	kpTTL, err := durationEnv("KP_CACHE_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RefreshInterval:  refreshInterval,
		PsiS:             psiS,
		CoherenceSamples: coherenceSamples,

		INGVBaseURL:     envOrDefault("INGV_BASE_URL", "https://webservices.ingv.it"),
		INGVTimeout:     ingvTimeout,
		MinLat:          minLat,
		MaxLat:          maxLat,
		MinLon:          minLon,
		MaxLon:          maxLon,
		Lookback:        lookback,
		CatalogCacheTTL: catalogTTL,

		NOAAKpURL:   envOrDefault("NOAA_KP_URL", "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json"),
		NOAATimeout: noaaTimeout,
		KpFallback:  kpFallback,
		KpCacheTTL:  kpTTL,

		LocalCatalogPath: envOrDefault("LOCAL_CATALOG_PATH", "events.csv"),
		TimeColumn:       os.Getenv("TIME_COLUMN"),
		MagnitudeColumn:  os.Getenv("MAGNITUDE_COLUMN"),
		DepthColumn:      os.Getenv("DEPTH_COLUMN"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "supt-metric-bundles"),
	}

	if cfg.MinLat >= cfg.MaxLat {
		return nil, errors.New("BBOX_MIN_LAT must be less than BBOX_MAX_LAT")
	}
	if cfg.MinLon >= cfg.MaxLon {
		return nil, errors.New("BBOX_MIN_LON must be less than BBOX_MAX_LON")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

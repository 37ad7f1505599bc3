package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/DGfinder/fleet-correlation-go/internal/models"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Engine defaults; every knob can still be overridden per run
	Cluster     models.ClusterParams
	Correlation models.CorrelationParams
	Routes      models.RouteParams
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        envString("PORT", ":8080"),
		DBPath:      envString("DB_PATH", "./data/fleet/fleet.db"),
		JWTSecret:   envString("JWT_SECRET", "change-me-in-production"),
		Cluster:     models.DefaultClusterParams(),
		Correlation: models.DefaultCorrelationParams(),
		Routes:      models.DefaultRouteParams(),
	}

	cfg.Cluster.RadiusMeters = envFloat("CLUSTER_RADIUS_METERS", cfg.Cluster.RadiusMeters)
	cfg.Cluster.MinPoints = envInt("CLUSTER_MIN_POINTS", cfg.Cluster.MinPoints)
	cfg.Cluster.MinIdleMinutes = envFloat("CLUSTER_MIN_IDLE_MINUTES", cfg.Cluster.MinIdleMinutes)

	cfg.Correlation.DateToleranceDays = envInt("CORRELATION_DATE_TOLERANCE_DAYS", cfg.Correlation.DateToleranceDays)
	cfg.Correlation.MaxSearchRadiusKm = envFloat("CORRELATION_MAX_SEARCH_RADIUS_KM", cfg.Correlation.MaxSearchRadiusKm)
	cfg.Correlation.MinConfidence = envInt("CORRELATION_MIN_CONFIDENCE", cfg.Correlation.MinConfidence)
	cfg.Correlation.TextEnabled = envBool("CORRELATION_TEXT_ENABLED", cfg.Correlation.TextEnabled)
	cfg.Correlation.GeoEnabled = envBool("CORRELATION_GEO_ENABLED", cfg.Correlation.GeoEnabled)
	cfg.Correlation.TemporalEnabled = envBool("CORRELATION_TEMPORAL_ENABLED", cfg.Correlation.TemporalEnabled)
	cfg.Correlation.Workers = envInt("CORRELATION_WORKERS", cfg.Correlation.Workers)

	cfg.Routes.MinTripCount = envInt("ROUTES_MIN_TRIP_COUNT", cfg.Routes.MinTripCount)
	cfg.Routes.POIConfidenceFloor = envInt("ROUTES_POI_CONFIDENCE_FLOOR", cfg.Routes.POIConfidenceFloor)
	cfg.Routes.AssignRadiusMeters = envFloat("ROUTES_ASSIGN_RADIUS_METERS", cfg.Routes.AssignRadiusMeters)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

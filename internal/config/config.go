// Package config reads the finder settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sauna/internal/storage"
	"sauna/pkg/places"
)

const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

const userAgent = "sauna-finder/1.0"

type Config struct {
	PlacesAPIKey   string
	PlacesEndpoint string
	Language       string

	ManualSource string
	ManualPath   string
	ManualBucket string
	ManualKey    string
	DatabaseURL  string

	NominatimEndpoint string
	UserAgent         string

	LogLevel  string
	LogFormat string

	// SessionIdleTTL is how long the worker keeps a session without triggers.
	SessionIdleTTL time.Duration

	Storage storage.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("places_endpoint", places.DefaultEndpoint)
	v.SetDefault("language", "en-US")
	v.SetDefault("manual_source", SourceFile)
	v.SetDefault("manual_path", "data/saunas.manual.json")
	v.SetDefault("manual_bucket", "saunas")
	v.SetDefault("nominatim_endpoint", "https://nominatim.openstreetmap.org")
	v.SetDefault("user_agent", userAgent)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("session_idle_ttl", 30*time.Minute)
}

// Load builds the configuration from SAUNA_* and MINIO_* environment
// variables. Call env.LoadEnv first so .env values are visible.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("sauna")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		PlacesAPIKey:      v.GetString("places_api_key"),
		PlacesEndpoint:    v.GetString("places_endpoint"),
		Language:          v.GetString("language"),
		ManualSource:      strings.ToLower(strings.TrimSpace(v.GetString("manual_source"))),
		ManualPath:        v.GetString("manual_path"),
		ManualBucket:      v.GetString("manual_bucket"),
		ManualKey:         v.GetString("manual_key"),
		DatabaseURL:       v.GetString("database_url"),
		NominatimEndpoint: v.GetString("nominatim_endpoint"),
		UserAgent:         v.GetString("user_agent"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		SessionIdleTTL:    v.GetDuration("session_idle_ttl"),
		Storage:           storage.ConfigFromEnv(),
	}

	switch cfg.ManualSource {
	case SourceFile, SourceS3:
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("SAUNA_DATABASE_URL is required for the %s manual source", SourcePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown manual source %q", cfg.ManualSource)
	}
	return cfg, nil
}

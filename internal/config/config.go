package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data source selectors for the historical dataset.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Geo      GeoConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatasetConfig selects where the historical rent/crime dataset is loaded
// from at startup.
type DatasetConfig struct {
	Source string // csv or postgres
	Path   string // CSV file path, used when Source is csv
}

// DatabaseConfig holds PostgreSQL connection configuration. Only consulted
// when the dataset source is postgres.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// GeoConfig holds Google Maps client configuration.
type GeoConfig struct {
	APIKey       string
	Timeout      time.Duration
	RateLimitRPS float64
	MaxAttempts  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_SOURCE", SourceCSV)
	v.SetDefault("DATASET_PATH", "data/nyc_rent_crime.csv")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "cityscope")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("GEO_TIMEOUT_SECONDS", 8)
	v.SetDefault("GEO_RATE_LIMIT_RPS", 10.0)
	v.SetDefault("GEO_MAX_ATTEMPTS", 3)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(v.GetString("DATA_SOURCE")),
			Path:   v.GetString("DATASET_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		Geo: GeoConfig{
			APIKey:       v.GetString("GOOGLE_MAPS_API_KEY"),
			Timeout:      time.Duration(v.GetInt("GEO_TIMEOUT_SECONDS")) * time.Second,
			RateLimitRPS: v.GetFloat64("GEO_RATE_LIMIT_RPS"),
			MaxAttempts:  v.GetInt("GEO_MAX_ATTEMPTS"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate dataset config
	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required when DATA_SOURCE is csv")
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when DATA_SOURCE is postgres")
		}
		if c.Database.Port == "" {
			return fmt.Errorf("DB_PORT is required when DATA_SOURCE is postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DATA_SOURCE is postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required when DATA_SOURCE is postgres")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when DATA_SOURCE is postgres")
		}
		if c.Database.PoolMin < 0 {
			return fmt.Errorf("DB_POOL_MIN must be non-negative")
		}
		if c.Database.PoolMax < 1 {
			return fmt.Errorf("DB_POOL_MAX must be at least 1")
		}
		if c.Database.PoolMin > c.Database.PoolMax {
			return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q", SourceCSV, SourcePostgres)
	}

	// Validate geo config
	if c.Geo.APIKey == "" {
		return fmt.Errorf("GOOGLE_MAPS_API_KEY is required")
	}
	if c.Geo.Timeout <= 0 {
		return fmt.Errorf("GEO_TIMEOUT_SECONDS must be positive")
	}
	if c.Geo.RateLimitRPS <= 0 {
		return fmt.Errorf("GEO_RATE_LIMIT_RPS must be positive")
	}
	if c.Geo.MaxAttempts < 1 {
		return fmt.Errorf("GEO_MAX_ATTEMPTS must be at least 1")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

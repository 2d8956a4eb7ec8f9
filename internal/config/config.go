package config

import (
	"os"
	"strconv"

	"golift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
	Import   ImportConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EngineConfig holds default statistical parameters and the Monte-Carlo
// seed used when callers do not supply one.
type EngineConfig struct {
	DefaultPower             float64
	DefaultSignificanceLevel float64
	Simulations              int
	Seed                     int64
}

// ImportConfig holds settings for the results import step
type ImportConfig struct {
	ResultsFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Engine: EngineConfig{
			DefaultPower:             envFloat("DEFAULT_POWER", 0.8),
			DefaultSignificanceLevel: envFloat("DEFAULT_SIGNIFICANCE_LEVEL", 0.05),
			Simulations:              envInt("BAYESIAN_SIMULATIONS", 10000),
			Seed:                     int64(envInt("ENGINE_SEED", 42)),
		},
		Import: ImportConfig{
			ResultsFile: os.Getenv("RESULTS_FILE"),
		},
	}

	if cfg.Engine.DefaultPower <= 0 || cfg.Engine.DefaultPower >= 1 {
		return nil, errors.New("CONFIG_INVALID", "DEFAULT_POWER must be in (0, 1)")
	}
	if cfg.Engine.DefaultSignificanceLevel <= 0 || cfg.Engine.DefaultSignificanceLevel >= 1 {
		return nil, errors.New("CONFIG_INVALID", "DEFAULT_SIGNIFICANCE_LEVEL must be in (0, 1)")
	}
	if cfg.Engine.Simulations <= 0 {
		return nil, errors.New("CONFIG_INVALID", "BAYESIAN_SIMULATIONS must be > 0")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
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

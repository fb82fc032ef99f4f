// Package config loads the orchestrator settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/constants"
)

// WorkerMode selects how scrape jobs reach the scraping worker
type WorkerMode string

const (
	// WorkerModePull exposes jobs through the poll endpoint
	WorkerModePull WorkerMode = "pull"
	// WorkerModePush posts jobs to WORKER_URL from the dispatch sweep
	WorkerModePush WorkerMode = "push"
)

// Config holds every setting the orchestrator reads at startup
type Config struct {
	Port     string
	LogLevel string

	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLEnabled  bool
	DBAutoMigrate bool

	WorkerMode  WorkerMode
	WorkerURL   string
	WorkerToken string

	DispatchInterval   time.Duration
	DispatchBatch      int
	StuckSweepInterval time.Duration
	StuckThreshold     time.Duration
	NightlySchedule    string

	ExtractorURL     string
	ExtractorAPIKey  string
	ExtractorModel   string
	ExtractorTimeout time.Duration

	RedisURL string
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt parses an integer environment variable
func GetEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// GetEnvBool parses a boolean environment variable
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// GetEnvDuration parses a duration environment variable such as "2m"
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:            GetEnv(constants.EnvPort, "8080"),
		LogLevel:        GetEnv(constants.EnvLogLevel, "info"),
		DBHost:          GetEnv(constants.EnvDBHost, "localhost"),
		DBUser:          GetEnv(constants.EnvDBUser, "postgres"),
		DBPassword:      GetEnv(constants.EnvDBPassword, "postgres"),
		DBName:          GetEnv(constants.EnvDBName, "postgres"),
		WorkerMode:      WorkerMode(GetEnv(constants.EnvWorkerMode, string(WorkerModePull))),
		WorkerURL:       GetEnv(constants.EnvWorkerURL, ""),
		WorkerToken:     GetEnv(constants.EnvWorkerToken, ""),
		NightlySchedule: GetEnv(constants.EnvNightlySchedule, "0 3 * * *"),
		ExtractorURL:    GetEnv(constants.EnvExtractorURL, ""),
		ExtractorAPIKey: GetEnv(constants.EnvExtractorAPIKey, ""),
		ExtractorModel:  GetEnv(constants.EnvExtractorModel, "gpt-4o-mini"),
		RedisURL:        GetEnv(constants.EnvRedisURL, ""),
	}

	var err error
	if cfg.DBPort, err = GetEnvInt(constants.EnvDBPort, 5432); err != nil {
		return nil, err
	}
	if cfg.DBSSLEnabled, err = GetEnvBool(constants.EnvDBSSLEnabled, false); err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate, err = GetEnvBool(constants.EnvDBAutoMigrate, true); err != nil {
		return nil, err
	}
	if cfg.DispatchInterval, err = GetEnvDuration(constants.EnvDispatchInterval, 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DispatchBatch, err = GetEnvInt(constants.EnvDispatchBatch, 5); err != nil {
		return nil, err
	}
	if cfg.StuckSweepInterval, err = GetEnvDuration(constants.EnvStuckSweepInterval, 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StuckThreshold, err = GetEnvDuration(constants.EnvStuckThreshold, 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ExtractorTimeout, err = GetEnvDuration(constants.EnvExtractorTimeout, 60*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations of settings
func (c *Config) Validate() error {
	switch c.WorkerMode {
	case WorkerModePull:
	case WorkerModePush:
		if c.WorkerURL == "" {
			return fmt.Errorf("%s is required when %s=push", constants.EnvWorkerURL, constants.EnvWorkerMode)
		}
	default:
		return fmt.Errorf("invalid %s: %s", constants.EnvWorkerMode, c.WorkerMode)
	}
	if c.DispatchBatch < 1 {
		return fmt.Errorf("invalid %s: must be at least 1", constants.EnvDispatchBatch)
	}
	if c.StuckSweepInterval >= c.StuckThreshold {
		return fmt.Errorf("%s must be shorter than %s", constants.EnvStuckSweepInterval, constants.EnvStuckThreshold)
	}
	return nil
}

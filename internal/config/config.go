package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process configuration. It is loaded once at startup and
// passed into every component that needs it.
type Config struct {
	Port                string
	DBPath              string
	TempFolder          string
	DownloadSourceURL   string
	DownloadSourceToken string
	DownloadTimeout     time.Duration
	UpdateDisabled      bool
	LookupCacheSize     int
	LookupCacheTTL      time.Duration
	LogLevel            string
	LogFormat           string
}

// Load reads the configuration from the environment. Empty variables count
// as unset; docker-compose passes empty strings for undefined
// interpolations.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "./data/cells.db"),
		TempFolder:          getEnv("TEMP_FOLDER", "/tmp/cell-service/data"),
		DownloadSourceURL:   getEnv("DOWNLOAD_SOURCE_URL", "https://opencellid.org/ocid/downloads"),
		DownloadSourceToken: os.Getenv("DOWNLOAD_SOURCE_TOKEN"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DownloadSourceToken == "" {
		return nil, fmt.Errorf("DOWNLOAD_SOURCE_TOKEN is required")
	}

	var err error
	if cfg.DownloadTimeout, err = getDuration("DOWNLOAD_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LookupCacheTTL, err = getDuration("LOOKUP_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.LookupCacheSize, err = getInt("LOOKUP_CACHE_SIZE", 10000); err != nil {
		return nil, err
	}
	if cfg.UpdateDisabled, err = getBool("UPDATE_DISABLED", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv returns the variable's value, or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	DBPath          string
	APIBaseURL      string
	RedisAddr       string // empty disables the entity cache
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	ProductionMode  bool
}

func GetConfig() (Config, error) {
	config := Config{
		Port:            8090, // default port
		DBPath:          "data/gainfully.db",
		APIBaseURL:      "http://localhost:8080",
		CacheTTL:        5 * time.Minute,
		RefreshInterval: 5 * time.Minute,
	}

	// Override with environment variables if present
	if port := os.Getenv("GAINFULLY_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 {
			return config, fmt.Errorf("GAINFULLY_PORT must be a positive integer, got %q", port)
		}
		config.Port = p
	}

	if dbPath := os.Getenv("GAINFULLY_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	if apiURL := os.Getenv("GAINFULLY_API_URL"); apiURL != "" {
		config.APIBaseURL = apiURL
	}

	if addr := os.Getenv("GAINFULLY_REDIS_ADDR"); addr != "" {
		config.RedisAddr = addr
	}

	if ttl := os.Getenv("GAINFULLY_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return config, fmt.Errorf("GAINFULLY_CACHE_TTL must be a positive duration, got %q", ttl)
		}
		config.CacheTTL = d
	}

	if interval := os.Getenv("GAINFULLY_REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil || d <= 0 {
			return config, fmt.Errorf("GAINFULLY_REFRESH_INTERVAL must be a positive duration, got %q", interval)
		}
		config.RefreshInterval = d
	}

	return config, nil
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}

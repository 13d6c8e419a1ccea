package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	// Scoring defaults, overridable per request
	DefaultWindowSize int
	BlurThreshold     float64
	DownscaleLongEdge int
	MaxWorkers        int
	MaxBatchSize      int

	// Image sources
	LocalImageRoot      string
	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials are configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// LocalEnabled reports whether file:// references are served
func (c *Config) LocalEnabled() bool {
	return c.LocalImageRoot != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024), // 1MB, requests carry URLs not pixels
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),

		DefaultWindowSize: int(parseIntOrDefault("DEFAULT_WINDOW_SIZE", 100)),
		BlurThreshold:     parseFloatOrDefault("BLUR_THRESHOLD", 100.0),
		DownscaleLongEdge: int(parseIntOrDefault("DOWNSCALE_LONG_EDGE", 1200)),
		MaxWorkers:        int(parseIntOrDefault("MAX_WORKERS", 0)),
		MaxBatchSize:      int(parseIntOrDefault("MAX_BATCH_SIZE", 32)),

		LocalImageRoot:      strings.TrimSpace(os.Getenv("LOCAL_IMAGE_ROOT")),
		AzureStorageAccount: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:     strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail at request time
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout)
	}
	if c.DefaultWindowSize < 8 {
		return fmt.Errorf("DEFAULT_WINDOW_SIZE must be >= 8 (got %d)", c.DefaultWindowSize)
	}
	if c.BlurThreshold < 0 {
		return fmt.Errorf("BLUR_THRESHOLD must be >= 0 (got %g)", c.BlurThreshold)
	}
	if c.DownscaleLongEdge != 0 && c.DownscaleLongEdge < c.DefaultWindowSize {
		return fmt.Errorf("DOWNSCALE_LONG_EDGE must be 0 or >= DEFAULT_WINDOW_SIZE (got %d)", c.DownscaleLongEdge)
	}
	if c.MaxWorkers < 0 || c.MaxBatchSize < 1 {
		return fmt.Errorf("MAX_WORKERS must be >= 0 and MAX_BATCH_SIZE >= 1 (got %d, %d)", c.MaxWorkers, c.MaxBatchSize)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL     = "PRODUCT_DETAILS_BASE_URL"
	EnvTimeout     = "PRODUCT_DETAILS_TIMEOUT"
	EnvToken       = "PRODUCT_DETAILS_TOKEN"
	EnvMetricsAddr = "PRODUCT_DETAILS_METRICS_ADDR"
	EnvCacheSize   = "PRODUCT_DETAILS_CACHE_SIZE"
)

// EnvString returns the trimmed value of key and whether it was set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvDuration parses key as a Go duration ("5s", "250ms").
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ApplyEnv overlays environment overrides onto c.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString(EnvBaseURL); ok {
		c.BaseURL = value
	}
	if value, ok, err := EnvDuration(EnvTimeout); err != nil {
		return err
	} else if ok {
		c.Timeout = value
	}
	if value, ok := EnvString(EnvToken); ok {
		c.Token = value
	}
	if value, ok := EnvString(EnvMetricsAddr); ok {
		c.MetricsAddr = value
	}
	if value, ok, err := EnvInt(EnvCacheSize); err != nil {
		return err
	} else if ok {
		c.CacheSize = value
	}
	return nil
}

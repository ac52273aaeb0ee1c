package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds product-details configuration.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	Token        string        `yaml:"-"`
	TokenFile    string        `yaml:"token_file"`
	CacheSize    int           `yaml:"cache_size"`
	ExportFile   string        `yaml:"export_file"`
	ExportFormat string        `yaml:"export_format"` // csv, json, or dual
	MetricsAddr  string        `yaml:"metrics_addr"`
	LogFile      string        `yaml:"log_file"`
	Verbose      bool          `yaml:"verbose"`
	Plain        bool          `yaml:"plain"`
}

// DefaultConfig returns defaults for the public catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://apis.ccbp.in",
		Timeout:      10 * time.Second,
		UserAgent:    "go-product-details/1.0",
		CacheSize:    128,
		ExportFormat: "csv",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	format := strings.ToLower(c.ExportFormat)
	if format != "csv" && format != "json" && format != "dual" {
		return fmt.Errorf("export format must be csv, json, or dual")
	}
	if c.ExportFile != "" && !c.Plain {
		return fmt.Errorf("export file requires plain mode")
	}

	return nil
}

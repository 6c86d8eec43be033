// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validatePlaceholders,
		c.validatePipeline,
		c.validateDatabase,
		c.validateServer,
		c.validateSecurity,
		c.validateBackend,
		c.validateNATS,
		c.validateRunStore,
		c.validateLogging,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validatePlaceholders rejects values copied from templates such as
// "<your-backend-url>" that were never filled in.
func (c *Config) validatePlaceholders() error {
	values := []struct {
		env   string
		value string
	}{
		{"BACKEND_URL", c.Backend.URL},
		{"BACKEND_API_KEY", c.Backend.APIKey},
		{"API_KEY", c.Security.APIKey},
		{"DUCKDB_PATH", c.Database.Path},
		{"NATS_URL", c.NATS.URL},
		{"RUNSTORE_PATH", c.RunStore.Path},
	}

	for _, v := range values {
		if containsPlaceholder(v.value) {
			return fmt.Errorf("%s contains a placeholder value %q; set a real value", v.env, v.value)
		}
	}
	return nil
}

// validatePipeline converts the section and applies the pipeline's own validation.
func (c *Config) validatePipeline() error {
	if err := c.Pipeline.RecommendConfig().Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	for _, s := range c.Pipeline.Source.Statuses {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("PRODUCT_STATUSES must not contain empty values")
		}
	}
	if c.Pipeline.Source.InteractionWindow < 0 {
		return fmt.Errorf("INTERACTION_WINDOW must not be negative")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateBackend validates notification settings (only if BACKEND_URL is set)
func (c *Config) validateBackend() error {
	if !c.Backend.NotificationsEnabled() {
		return nil
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("BACKEND_URL must include a host")
	}
	if c.Backend.APIKey == "" {
		return fmt.Errorf("BACKEND_API_KEY or API_KEY is required when BACKEND_URL is set")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.Source == "" {
		return fmt.Errorf("BACKEND_SOURCE must not be empty")
	}
	return nil
}

// NATS limit constants
const (
	natsMinMemory    = 64 * 1024 * 1024  // 64MB
	natsMinStore     = 100 * 1024 * 1024 // 100MB
	natsMinRetention = 1
	natsMaxRetention = 365
)

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	u, err := url.Parse(c.NATS.URL)
	if err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("NATS_URL must use nats:// or tls://, got %q", c.NATS.URL)
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
	}
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
	}
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
	}
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_RETENTION_DAYS must be between 1 and 365")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("NATS_SUBJECT must not be empty")
	}
	return nil
}

func (c *Config) validateRunStore() error {
	if c.RunStore.Retention <= 0 {
		return fmt.Errorf("RUNSTORE_RETENTION must be positive")
	}
	if c.RunStore.HistoryLimit < 1 {
		return fmt.Errorf("RUNSTORE_HISTORY_LIMIT must be at least 1")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// containsPlaceholder reports whether a value still looks like a template
// marker such as <your-api-key> or CHANGEME.
func containsPlaceholder(value string) bool {
	if strings.Contains(value, "<") && strings.Contains(value, ">") {
		return true
	}
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE_ME",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_API_KEY",
	"PLACEHOLDER",
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

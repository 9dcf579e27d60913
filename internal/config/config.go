// Package config provides configuration management for the Gridiron Edge service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	OddsAPI   OddsAPIConfig   `mapstructure:"odds_api" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// OddsAPIConfig represents the upstream odds provider configuration
type OddsAPIConfig struct {
	BaseURL          string   `mapstructure:"base_url" validate:"required,url"`
	APIKey           string   `mapstructure:"api_key" validate:"required"`
	Regions          []string `mapstructure:"regions" validate:"required,min=1"`
	TimeoutSeconds   int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries       int      `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit        float64  `mapstructure:"rate_limit" validate:"required,gt=0"`
	FetchConcurrency int      `mapstructure:"fetch_concurrency" validate:"required,gt=0"`
}

// CacheConfig represents the result cache configuration
type CacheConfig struct {
	TTLSeconds               int    `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	SnapshotFile             string `mapstructure:"snapshot_file" validate:"required"`
	HideStartedBufferMinutes int    `mapstructure:"hide_started_buffer_minutes" validate:"gte=0"`
}

// PipelineConfig represents sport and market selection for the pipeline
type PipelineConfig struct {
	TeamSport     string   `mapstructure:"team_sport" validate:"required"`
	PropSport     string   `mapstructure:"prop_sport" validate:"required"`
	TeamMarkets   []string `mapstructure:"team_markets" validate:"required,min=1"`
	PropMarkets   []string `mapstructure:"prop_markets" validate:"required,min=1"`
	MaxPropEvents int      `mapstructure:"max_prop_events" validate:"required,gt=0"`
}

// MetricsConfig represents metrics exposure configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SchedulerConfig represents the background cache re-warm job
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddr returns the HTTP listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// CacheTTL returns the cache time-to-live as a duration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// HideStartedBuffer returns the started-event safety buffer as a duration
func (c *Config) HideStartedBuffer() time.Duration {
	return time.Duration(c.Cache.HideStartedBufferMinutes) * time.Minute
}

// OddsAPITimeout returns the upstream request timeout as a duration
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// Package config provides configuration management for the Gridiron Edge service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("GRIDIRON_EDGE")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers a usable default for every knob except the API key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gridiron-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 3020)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.api_key", os.Getenv("ODDS_API_KEY"))
	v.SetDefault("odds_api.regions", []string{"us"})
	v.SetDefault("odds_api.timeout_seconds", 15)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit", 5.0)
	v.SetDefault("odds_api.fetch_concurrency", 4)

	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.snapshot_file", "cache.json")
	v.SetDefault("cache.hide_started_buffer_minutes", 0)

	v.SetDefault("pipeline.team_sport", "americanfootball_ncaaf")
	v.SetDefault("pipeline.prop_sport", "americanfootball_nfl")
	v.SetDefault("pipeline.team_markets", []string{"spreads", "totals"})
	v.SetDefault("pipeline.prop_markets", []string{
		"player_pass_yds",
		"player_rec_yds",
		"player_rush_yds",
		"player_receptions",
		"player_rush_att",
		"player_pass_tds",
		"player_anytime_td",
	})
	v.SetDefault("pipeline.max_prop_events", 12)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.refresh_schedule", "@every 5m")
}

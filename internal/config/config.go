// Package config loads application configuration from an optional YAML
// file, environment variables prefixed FACILITY, and built-in defaults,
// and installs the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Yelp       YelpConfig       `yaml:"yelp" mapstructure:"yelp"`
	Foursquare FoursquareConfig `yaml:"foursquare" mapstructure:"foursquare"`
	Overpass   OverpassConfig   `yaml:"overpass" mapstructure:"overpass"`
	Session    SessionConfig    `yaml:"session" mapstructure:"session"`
	Domain     DomainConfig     `yaml:"domain" mapstructure:"domain"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Compliance ComplianceConfig `yaml:"compliance" mapstructure:"compliance"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds the primary geo-search provider credential.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// YelpConfig holds the Yelp Fusion credential. An empty key skips the
// source.
type YelpConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FoursquareConfig holds the Foursquare credential. An empty key skips
// the source.
type FoursquareConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OverpassConfig holds the Overpass endpoint. No credential needed.
type OverpassConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// SessionConfig bounds total outbound requests per session window.
type SessionConfig struct {
	MaxRequests  int `yaml:"max_requests" mapstructure:"max_requests"`
	WindowMins   int `yaml:"window_mins" mapstructure:"window_mins"`
	CooldownSecs int `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
}

// DomainConfig bounds per-domain fetch pacing.
type DomainConfig struct {
	MinDelaySecs int `yaml:"min_delay_secs" mapstructure:"min_delay_secs"`
	PerMinute    int `yaml:"per_minute" mapstructure:"per_minute"`
}

// EnrichConfig bounds the enrichment pipeline and points at an
// optional merge-policy override file.
type EnrichConfig struct {
	BatchBudgetSecs    int    `yaml:"batch_budget_secs" mapstructure:"batch_budget_secs"`
	AdapterTimeoutSecs int    `yaml:"adapter_timeout_secs" mapstructure:"adapter_timeout_secs"`
	PolicyFile         string `yaml:"policy_file" mapstructure:"policy_file"`
}

// ComplianceConfig configures the scraping gate.
type ComplianceConfig struct {
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BatchBudget returns the batch allowance as a duration.
func (c EnrichConfig) BatchBudget() time.Duration {
	return time.Duration(c.BatchBudgetSecs) * time.Second
}

// AdapterTimeout returns the per-lookup timeout as a duration.
func (c EnrichConfig) AdapterTimeout() time.Duration {
	return time.Duration(c.AdapterTimeoutSecs) * time.Second
}

// Window returns the session window as a duration.
func (c SessionConfig) Window() time.Duration {
	return time.Duration(c.WindowMins) * time.Minute
}

// Cooldown returns the post-window cooldown as a duration.
func (c SessionConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSecs) * time.Second
}

// MinDelay returns the per-domain minimum delay as a duration.
func (c DomainConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelaySecs) * time.Second
}

// Load reads configuration from config.yaml (optional), the
// environment, and defaults, in that order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FACILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("yelp.base_url", "https://api.yelp.com/v3")
	v.SetDefault("foursquare.base_url", "https://api.foursquare.com/v3")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.enabled", true)
	v.SetDefault("session.max_requests", 50)
	v.SetDefault("session.window_mins", 30)
	v.SetDefault("session.cooldown_secs", 60)
	v.SetDefault("domain.min_delay_secs", 6)
	v.SetDefault("domain.per_minute", 10)
	v.SetDefault("enrich.batch_budget_secs", 20)
	v.SetDefault("enrich.adapter_timeout_secs", 8)
	v.SetDefault("compliance.user_agent", "Mozilla/5.0 (compatible; FacilityFinderBot/1.0)")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger builds the global zap logger from log settings.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

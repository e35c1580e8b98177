// Package config loads service configuration from config.toml and
// NUMBERING_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Numbering NumberingConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsDevelopment reports whether the app runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// NumberingConfig holds engine settings.
type NumberingConfig struct {
	// Timezone decides "today" when a generate request carries no date
	Timezone string

	// DefaultFiscalYearStartMonth applies to settings stored without one
	DefaultFiscalYearStartMonth int

	// Location is Timezone resolved by Load
	Location *time.Location
}

// RedisConfig holds the org-code cache settings.
type RedisConfig struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	OrgCodeTTL time.Duration
}

// HTTPConfig holds HTTP server timeouts.
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables with NUMBERING_ prefix (e.g., NUMBERING_DATABASE_DSN)
// 2. configFile, or config.toml in the working directory
// 3. Built-in defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/numbering")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("NUMBERING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			DSN:              v.GetString("database.dsn"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			ConnMaxLifetime:  v.GetDuration("database.conn_max_lifetime"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Numbering: NumberingConfig{
			Timezone:                    v.GetString("numbering.timezone"),
			DefaultFiscalYearStartMonth: v.GetInt("numbering.default_fiscal_year_start_month"),
		},
		Redis: RedisConfig{
			Enabled:    v.GetBool("redis.enabled"),
			Addr:       v.GetString("redis.addr"),
			Password:   v.GetString("redis.password"),
			DB:         v.GetInt("redis.db"),
			OrgCodeTTL: v.GetDuration("redis.org_code_ttl"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "numbering"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.StatementTimeout == 0 {
		cfg.Database.StatementTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Numbering.Timezone == "" {
		cfg.Numbering.Timezone = "Local"
	}
	if cfg.Numbering.DefaultFiscalYearStartMonth == 0 {
		cfg.Numbering.DefaultFiscalYearStartMonth = 4
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.OrgCodeTTL == 0 {
		cfg.Redis.OrgCodeTTL = 10 * time.Minute
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
}

// validate checks values that defaults cannot fix and resolves the location.
func (c *Config) validate() error {
	if m := c.Numbering.DefaultFiscalYearStartMonth; m < 1 || m > 12 {
		return fmt.Errorf("numbering.default_fiscal_year_start_month must be 1..12, got %d", m)
	}
	loc, err := time.LoadLocation(c.Numbering.Timezone)
	if err != nil {
		return fmt.Errorf("numbering.timezone: %w", err)
	}
	c.Numbering.Location = loc

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) exceeds database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Database.StatementTimeout < 0 {
		return fmt.Errorf("database.statement_timeout must not be negative")
	}
	return nil
}

// RequireDatabase fails when no DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (set NUMBERING_DATABASE_DSN)")
	}
	return nil
}

package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values merge in three layers: built-in defaults, an optional YAML file,
// and PROOFLENS_* environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig contains the sliding-window store connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig contains the per-route window policies.
//
// FailOpen decides what happens when the window store is unreachable:
// false (the default) denies requests, true lets them through unmetered.
type RateLimitConfig struct {
	FailOpen bool         `mapstructure:"fail_open"`
	Analyze  PolicyConfig `mapstructure:"analyze"`
	Greeting PolicyConfig `mapstructure:"greeting"`
}

// PolicyConfig is one route's quota: Limit requests per sliding Window.
type PolicyConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// OpenAIConfig contains upstream analysis provider settings.
// APIKey is normally supplied via OPENAI_API_KEY rather than a config file.
type OpenAIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether /metrics is exposed
	Enabled bool `mapstructure:"enabled"`
}

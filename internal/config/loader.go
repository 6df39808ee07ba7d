// Package config provides centralized configuration management for ProofLens.
// Defaults cover every key, so the gateway starts with nothing but an
// OPENAI_API_KEY; a YAML file and PROOFLENS_* environment variables override
// them (PROOFLENS_SERVER_PORT=9090 sets server.port).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.fail_open", false)
	v.SetDefault("rate_limit.analyze.limit", 30)
	v.SetDefault("rate_limit.analyze.window", 10*time.Minute)
	v.SetDefault("rate_limit.greeting.limit", 60)
	v.SetDefault("rate_limit.greeting.window", 10*time.Minute)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("openai.timeout", 30*time.Second)
	v.SetDefault("openai.max_output_tokens", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
}

// Load builds the configuration from defaults, an optional config file, and
// environment overrides. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PROOFLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The conventional credential variable wins over the key in a file but
	// not over an explicit PROOFLENS_OPENAI_API_KEY.
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" && os.Getenv("PROOFLENS_OPENAI_API_KEY") == "" {
		cfg.OpenAI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr must not be empty")
	}
	if err := validatePolicy("rate_limit.analyze", c.RateLimit.Analyze); err != nil {
		return err
	}
	if err := validatePolicy("rate_limit.greeting", c.RateLimit.Greeting); err != nil {
		return err
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be positive, got %s", c.OpenAI.Timeout)
	}
	if c.OpenAI.MaxOutputTokens <= 0 {
		return fmt.Errorf("openai.max_output_tokens must be positive, got %d", c.OpenAI.MaxOutputTokens)
	}
	return nil
}

func validatePolicy(name string, p PolicyConfig) error {
	if p.Limit <= 0 {
		return fmt.Errorf("%s.limit must be positive, got %d", name, p.Limit)
	}
	if p.Window <= 0 {
		return fmt.Errorf("%s.window must be positive, got %s", name, p.Window)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. EISENBOARD_SERVER_PORT.
const EnvPrefix = "EISENBOARD"

// DefaultSQLiteURL keeps the board in a file next to the binary.
const DefaultSQLiteURL = "file:eisenboard.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching for config.yaml. An empty path searches the working directory.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The browser build read its key from these names; keep honouring them.
	if err := v.BindEnv("llm.api_key",
		EnvPrefix+"_LLM_API_KEY",
		"OPENROUTER_API_KEY",
		"NEXT_PUBLIC_OPENROUTER_API_KEY",
	); err != nil {
		return nil, fmt.Errorf("failed to bind api key environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", DefaultSQLiteURL)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "anthropic/claude-3-opus")
	v.SetDefault("llm.expand_model", "anthropic/claude-3.5-sonnet")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.expand_temperature", 0.7)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.expand_max_tokens", 1000)
	v.SetDefault("llm.referer", "http://localhost:3000")
	v.SetDefault("llm.title", "Eisenboard AI Assistant")
	v.SetDefault("llm.expand_title", "Eisenboard Task Expansion")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.requests_per_second", 1.0)
	v.SetDefault("llm.burst", 2)

	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 32)
	v.SetDefault("jobs.stuck_job_age_minutes", 15)

	v.SetDefault("metrics.enabled", true)
}

// Defaults returns a Config populated only with default values.
// Useful for tests and for tools that do not read the environment.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal of plain defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

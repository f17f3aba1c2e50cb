package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig selects the board database.
// The sqlite driver takes a file DSN; postgres takes a connection URL.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	URL         string `mapstructure:"url" validate:"required"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// LLMConfig contains the settings for the optional assistant.
// An empty APIKey disables every assistant feature.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=openrouter gemini"`
	APIKey            string  `mapstructure:"api_key"`
	Endpoint          string  `mapstructure:"endpoint" validate:"required,url"`
	Model             string  `mapstructure:"model" validate:"required"`
	ExpandModel       string  `mapstructure:"expand_model" validate:"required"`
	GeminiModel       string  `mapstructure:"gemini_model" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	ExpandTemperature float32 `mapstructure:"expand_temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `mapstructure:"max_tokens" validate:"gt=0"`
	ExpandMaxTokens   int     `mapstructure:"expand_max_tokens" validate:"gt=0"`
	Referer           string  `mapstructure:"referer"`
	Title             string  `mapstructure:"title"`
	ExpandTitle       string  `mapstructure:"expand_title"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"gt=0"`
}

// Enabled reports whether an API key is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// JobsConfig sizes the background job runner.
type JobsConfig struct {
	WorkerCount        int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize          int `mapstructure:"queue_size" validate:"gt=0"`
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"gt=0"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

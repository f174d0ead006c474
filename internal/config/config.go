// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Advisor AdvisorConfig `mapstructure:"advisor" yaml:"advisor"`
	Profile ProfileConfig `mapstructure:"profile" yaml:"profile"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Flow    FlowConfig    `mapstructure:"flow" yaml:"flow"`

	// Credentials come from the environment (.env), never the config file.
	Credentials CredentialsConfig `mapstructure:"-" yaml:"-"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome instance driving the session.
type BrowserConfig struct {
	Headless bool     `mapstructure:"headless" yaml:"headless"`
	Debug    bool     `mapstructure:"debug" yaml:"debug"`
	Args     []string `mapstructure:"args" yaml:"args"`
}

// NetworkConfig tunes page interaction timing. The target document renders
// asynchronously, so every mutation is followed by a short settle delay.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	StepDelay         time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
}

// AdvisorProvider defines the supported advisory-service providers.
type AdvisorProvider string

const (
	ProviderGroq   AdvisorProvider = "groq"
	ProviderGemini AdvisorProvider = "gemini"
)

// AdvisorConfig configures the language-model advisory service. The advisor is
// optional at runtime: if it cannot be constructed or a call fails, every call
// site falls back to deterministic behavior.
type AdvisorConfig struct {
	Provider    AdvisorProvider `mapstructure:"provider" yaml:"provider"`
	Model       string          `mapstructure:"model" yaml:"model"`
	APIKey      string          `mapstructure:"api_key" yaml:"-"`
	Endpoint    string          `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout     time.Duration   `mapstructure:"timeout" yaml:"timeout"`
	Temperature float64         `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int             `mapstructure:"max_tokens" yaml:"max_tokens"`
	RateLimit   float64         `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst   int             `mapstructure:"rate_burst" yaml:"rate_burst"`
}

// ProfileConfig points at the candidate profile document.
type ProfileConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// HistoryConfig points at the persisted application history document.
type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// SearchConfig holds the job search parameters for a run.
type SearchConfig struct {
	Keywords        string `mapstructure:"keywords" yaml:"keywords"`
	Location        string `mapstructure:"location" yaml:"location"`
	MaxApplications int    `mapstructure:"max_applications" yaml:"max_applications"`
	MaxJobsPerPage  int    `mapstructure:"max_jobs_per_page" yaml:"max_jobs_per_page"`
}

// FlowConfig bounds the application-flow state machine.
type FlowConfig struct {
	MaxSteps        int           `mapstructure:"max_steps" yaml:"max_steps"`
	ClickRetries    int           `mapstructure:"click_retries" yaml:"click_retries"`
	CheckpointGrace time.Duration `mapstructure:"checkpoint_grace" yaml:"checkpoint_grace"`
}

// CredentialsConfig holds secrets sourced from the environment.
type CredentialsConfig struct {
	Email    string
	Password string
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "easyapply")
	v.SetDefault("logger.log_file", "easyapply.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.debug", false)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.action_timeout", "30s")
	v.SetDefault("network.settle_delay", "500ms")
	v.SetDefault("network.step_delay", "2s")

	// -- Advisor --
	v.SetDefault("advisor.provider", "groq")
	v.SetDefault("advisor.model", "llama-3.1-70b-versatile")
	v.SetDefault("advisor.timeout", "10s")
	v.SetDefault("advisor.temperature", 0.3)
	v.SetDefault("advisor.max_tokens", 500)
	v.SetDefault("advisor.rate_limit", 2.0)
	v.SetDefault("advisor.rate_burst", 4)

	// -- Profile / History --
	v.SetDefault("profile.path", "profile.txt")
	v.SetDefault("history.path", "applied_jobs.json")

	// -- Search --
	v.SetDefault("search.keywords", "software engineer")
	v.SetDefault("search.location", "")
	v.SetDefault("search.max_applications", 10)
	v.SetDefault("search.max_jobs_per_page", 25)

	// -- Flow --
	v.SetDefault("flow.max_steps", 10)
	v.SetDefault("flow.click_retries", 3)
	v.SetDefault("flow.checkpoint_grace", "60s")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults alone, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Flow.MaxSteps <= 0 {
		return fmt.Errorf("flow.max_steps must be a positive integer")
	}
	if c.Flow.ClickRetries <= 0 {
		return fmt.Errorf("flow.click_retries must be a positive integer")
	}
	if c.Search.MaxApplications <= 0 {
		return fmt.Errorf("search.max_applications must be a positive integer")
	}
	if c.Profile.Path == "" {
		return fmt.Errorf("profile.path is a required configuration field")
	}
	if c.History.Path == "" {
		return fmt.Errorf("history.path is a required configuration field")
	}
	if c.Advisor.Timeout <= 0 {
		return fmt.Errorf("advisor.timeout must be a positive duration")
	}
	switch c.Advisor.Provider {
	case ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("advisor.provider must be one of [%s, %s]", ProviderGroq, ProviderGemini)
	}
	return nil
}

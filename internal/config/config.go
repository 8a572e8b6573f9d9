// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/hpn/promptpal/internal/domain"
)

// Configuration holds all application configuration values.
// Chat API keys are deliberately absent: they are supplied per request.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Upstream chat providers
	Upstream UpstreamConfig `json:"upstream" mapstructure:"upstream"`

	// Prompt flows backend
	Flows FlowsConfig `json:"flows" mapstructure:"flows"`

	// Models offered in the picker
	Models []domain.ModelOption `json:"models" mapstructure:"models"`

	// DefaultModel is preselected when the caller does not choose one.
	DefaultModel string `json:"default_model" mapstructure:"default_model"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// UpstreamConfig holds the chat provider endpoints.
type UpstreamConfig struct {
	// OpenRouterURL is the chat-completions endpoint for models containing "/".
	OpenRouterURL string `json:"openrouter_url" mapstructure:"openrouter_url"`

	// DashScopeURL is the generation endpoint for all other models.
	DashScopeURL string `json:"dashscope_url" mapstructure:"dashscope_url"`

	// TimeoutSeconds bounds each upstream call; 0 leaves it to the transport.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// FlowsConfig holds the Gemini backend used by the rewrite and summarize flows.
type FlowsConfig struct {
	// APIKey authenticates against Gemini. Flows are disabled when empty.
	APIKey string `json:"-" mapstructure:"api_key"`

	// BaseURL is the Gemini API base.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// Model is the Gemini model name.
	Model string `json:"model" mapstructure:"model"`

	// TimeoutSeconds bounds each flow call.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Enabled reports whether a flows backend is configured.
func (f FlowsConfig) Enabled() bool {
	return f.APIKey != ""
}

// Timeout returns the flow call timeout.
func (f FlowsConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Timeout returns the upstream call timeout, zero meaning none.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`

	// OutputPath is the file path for log output (empty for stderr).
	OutputPath string `json:"output_path" mapstructure:"output_path"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the singleton Configuration instance.
// It initializes the configuration on first call using the default config path.
func GetConfig() (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig("")
	})
	return configInstance, configErr
}

// GetConfigWithPath returns the singleton Configuration instance with a custom config path.
// The path only matters on the first call.
func GetConfigWithPath(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
func (c *Configuration) Validate() error {
	var validationErrors []string

	// Validate server configuration
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	// Validate upstream endpoints
	for _, pt := range []domain.ProviderType{domain.ProviderOpenRouter, domain.ProviderDashScope} {
		if p, _ := c.GetProvider(pt); !p.IsValid() || !isValidURL(p.URL) {
			validationErrors = append(validationErrors, fmt.Sprintf("upstream.%s_url must be an absolute http(s) URL", pt))
		}
	}
	if c.Upstream.TimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "upstream.timeout_seconds cannot be negative")
	}

	// Validate flows backend
	if c.Flows.Enabled() && !isValidURL(c.Flows.BaseURL) {
		validationErrors = append(validationErrors, "flows.base_url must be an absolute http(s) URL")
	}

	// Validate model catalog
	if len(c.Models) == 0 {
		validationErrors = append(validationErrors, "models cannot be empty")
	}
	for i, m := range c.Models {
		if m.Value == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("models[%d].value is required", i))
		}
		if m.Label == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("models[%d].label is required", i))
		}
	}
	if c.DefaultModel == "" {
		validationErrors = append(validationErrors, "default_model is required")
	} else if _, ok := domain.FindModel(c.Models, c.DefaultModel); !ok && len(c.Models) > 0 {
		validationErrors = append(validationErrors, fmt.Sprintf("default_model '%s' is not in models", c.DefaultModel))
	}

	// Validate logging configuration
	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}
	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text",
			c.Logging.Format,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidURL checks that raw is an absolute http or https URL.
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// GetProvider returns the endpoint configuration for a provider.
func (c *Configuration) GetProvider(providerType domain.ProviderType) (*domain.Provider, bool) {
	if !providerType.IsValid() {
		return nil, false
	}
	url := c.Upstream.DashScopeURL
	if providerType == domain.ProviderOpenRouter {
		url = c.Upstream.OpenRouterURL
	}
	return &domain.Provider{Type: providerType, URL: url}, true
}

// Package config provides configuration management using the Singleton pattern.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hpn/promptpal/internal/adapter"
	"github.com/hpn/promptpal/internal/domain"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "PROMPTPAL"
)

// flowsKeyFallbacks are read, in order, when flows.api_key is not configured.
var flowsKeyFallbacks = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. Environment variables (prefixed with PROMPTPAL_)
// 2. config.yaml
// 3. Default values
func loadConfig(configPath string) (*Configuration, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure Viper
	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	// Add config search paths
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/promptpal")
		v.AddConfigPath("$HOME/.promptpal")
	}

	// Enable environment variable override
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Read configuration file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	}

	// Unmarshal configuration
	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	if cfg.Flows.APIKey == "" {
		cfg.Flows.APIKey = lookupFlowsKey()
	}
	if len(cfg.Models) == 0 {
		cfg.Models = domain.DefaultModels()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 9002)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	// Upstream defaults
	v.SetDefault("upstream.openrouter_url", domain.DefaultOpenRouterURL)
	v.SetDefault("upstream.dashscope_url", domain.DefaultDashScopeURL)
	v.SetDefault("upstream.timeout_seconds", 0)

	// Flows defaults
	v.SetDefault("flows.api_key", "")
	v.SetDefault("flows.base_url", adapter.DefaultGeminiBaseURL)
	v.SetDefault("flows.model", adapter.DefaultGeminiModel)
	v.SetDefault("flows.timeout_seconds", 60)

	// Model defaults
	v.SetDefault("default_model", domain.DefaultModel)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "")
}

// lookupFlowsKey falls back to the conventional Gemini env vars.
func lookupFlowsKey() string {
	for _, name := range flowsKeyFallbacks {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

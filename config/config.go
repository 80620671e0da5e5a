package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddress = "127.0.0.10:8088"
	DefaultUpstreamURL   = "https://api.deepseek.com/chat/completions"
	DefaultUpstreamModel = "deepseek-chat"
	DefaultEnvFile       = ".env"

	// APIKeyEnv is the variable that carries the upstream bearer token.
	APIKeyEnv = "API_KEY_LLM"

	envPrefix = "LLMRELAY"
)

// LoadConfig builds the configuration from, in rising priority: defaults,
// the optional YAML config file, then environment variables. The optional
// .env file is loaded into the environment first and never overrides
// variables that are already set.
// Both file paths may be empty.
func LoadConfig(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	v := viper.New()
	v.SetDefault("listen_address", DefaultListenAddress)
	v.SetDefault("upstream.url", DefaultUpstreamURL)
	v.SetDefault("upstream.model", DefaultUpstreamModel)
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.timeout", "0s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("upstream.api_key", APIKeyEnv); err != nil {
		return nil, fmt.Errorf("error binding %s: %w", APIKeyEnv, err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validation
	if configuration.ListenAddress == "" {
		return nil, errors.New("listen_address is required")
	}
	if configuration.Upstream.URL == "" {
		return nil, errors.New("upstream.url is required")
	}
	if configuration.Upstream.Timeout < 0 {
		return nil, fmt.Errorf("upstream.timeout must not be negative, got %s", configuration.Upstream.Timeout)
	}

	// An empty API key is allowed; the upstream rejects it and the caller
	// sees that as an error string.

	return &configuration, nil
}

package config

import "time"

// Upstream describes the chat-completion API that relayed messages go to.
type Upstream struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config holds the application configuration.
type Config struct {
	ListenAddress string   `mapstructure:"listen_address"`
	Upstream      Upstream `mapstructure:"upstream"`
}

package config

import "github.com/spf13/cobra"

type CliConfig struct {
	ConfigFile string
	EnvFile    string
	Debug      bool
	Version    bool
}

// BindFlags registers the optional command-line flags on cmd.
// None of them are required to start the server.
func (c *CliConfig) BindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.ConfigFile, "config", "", "Path to an optional YAML config file")
	flags.StringVar(&c.EnvFile, "env-file", DefaultEnvFile, "Path to an optional .env file")
	flags.BoolVarP(&c.Debug, "debug", "d", false, "Enable debug mode")
	flags.BoolVarP(&c.Version, "version", "v", false, "Print version and exit")
}

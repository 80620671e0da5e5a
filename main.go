package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"llmrelay/config"
	"llmrelay/handler"
	"llmrelay/logging"
	"llmrelay/manager"
	"llmrelay/upstream"
)

var version = "dev"

// shutdownTimeout bounds how long in-flight relays get to finish once a
// stop signal arrives.
const shutdownTimeout = 10 * time.Second

func main() {
	cliArgs := &config.CliConfig{}
	rootCmd := &cobra.Command{
		Use:           "llmrelay",
		Short:         "Relay chat messages to an upstream LLM API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cliArgs.Version {
				fmt.Println(version)
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cliArgs)
		},
	}
	cliArgs.BindFlags(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.GetLogger().Fatalf("%v", err)
	}
}

func run(ctx context.Context, cliArgs *config.CliConfig) error {
	if cliArgs.Debug {
		logging.InitLogger(logrus.DebugLevel)
	} else {
		logging.InitLogger(logrus.InfoLevel)
	}
	log := logging.GetLogger()

	cfg, err := config.LoadConfig(cliArgs.ConfigFile, cliArgs.EnvFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Upstream.APIKey == "" {
		log.Warnf("%s is not set, upstream requests will likely be rejected", config.APIKeyEnv)
	}

	monitor := manager.NewActivityMonitor()
	go monitor.Run(ctx)

	httpHandler := handler.NewHTTPHandler(upstream.NewClient(cfg.Upstream), monitor)

	// Define the server
	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: httpHandler,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	log.Infof("Starting server on %s, relaying to %s (%s)", cfg.ListenAddress, cfg.Upstream.URL, cfg.Upstream.Model)
	if err := serve(ctx, server, ln, shutdownTimeout); err != nil {
		return err
	}
	log.Infoln("Server stopped")
	return nil
}

// serve runs server on ln until ctx is done, then waits for in-flight
// requests to drain before returning.
func serve(ctx context.Context, server *http.Server, ln net.Listener, drainTimeout time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"deskmatter/internal/api"
	"deskmatter/internal/config"
	"deskmatter/internal/logging"
	"deskmatter/internal/server"
	"deskmatter/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "deskmatter",
	Short: "Local data service for the deskmatter desktop app",
	Long: `deskmatter serves the desktop app's matters, tags, todos, repeat tasks,
notifications and settings over a loopback-only HTTP API.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Serve command flags
var (
	configPath string
	portFlag   int
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP service",
	Long: `Start the local HTTP service and block until SIGINT or SIGTERM.

Configuration is read from defaults, the optional config.yaml (working
directory or the per-user config directory) and DESKMATTER_* environment
variables. Flags override all of them.`,
	Example: `  # Start with defaults on localhost:18089
  deskmatter serve

  # Start on another port with debug logging
  deskmatter serve --port 19000 --log-level debug

  # Use an explicit config file
  deskmatter serve --config ./deskmatter.yaml`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deskmatter %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: search working and config directories)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP port on localhost (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	defer closer.Close()

	api.Version = Version
	log.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("driver", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting deskmatter")

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()

	app, err := server.NewApp(cfg, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

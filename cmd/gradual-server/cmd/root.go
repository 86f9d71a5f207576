package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/service/scheduler"
	"github.com/oshokin/gradual/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// database overrides the SQLite file from the configuration.
	database string
	// singleInstance refuses to start next to a running daemon.
	singleInstance bool

	// rootCmd represents the base command for running the scheduler daemon.
	rootCmd = &cobra.Command{
		Use:   "gradual-server [listen-address]",
		Short: "Run the alarm scheduler and its control service.",
		Long: `Starts the scheduler loop that plays alarms at fixed clock times or
astronomical moments, together with the gRPC control service used to pause
and resume it.

The loop ticks once at startup and then every poll_interval from the
configuration file. Listen address can be provided as argument to override
control_addr (e.g., 127.0.0.1:7000).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &scheduler.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				Database:       database,
				SingleInstance: singleInstance,
			}

			return scheduler.Run(ctx, options)
		},
	}
)

// Execute runs the gradual-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&database, "database", "d", "", "path to the alarm database, overrides settings")
	rootCmd.Flags().BoolVar(&singleInstance, "single-instance", false, "refuse to start when another daemon is running")
}

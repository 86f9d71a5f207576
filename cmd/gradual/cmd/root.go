package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command of the gradual CLI.
	rootCmd = &cobra.Command{
		Use:   "gradual",
		Short: "Manage alarms and the running scheduler.",
		Long: `Edits the alarm store and controls the gradual-server daemon.

Alarm subcommands work on the SQLite database directly; pause, resume and
state talk to the daemon's control service and record who asked.`,
		SilenceUsage: true,
	}
)

// Execute runs the gradual CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context canceled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}

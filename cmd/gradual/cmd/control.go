package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/gradual/internal/service/control"
)

// newControlCommand builds pause, resume or state.
func newControlCommand(action control.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " [server-address]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return control.Run(ctx, &control.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Action:        action,
				Output:        cmd.OutOrStdout(),
			})
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(
		newControlCommand(control.ActionPause, "Stop the scheduler from playing alarms."),
		newControlCommand(control.ActionResume, "Let the scheduler play alarms again."),
		newControlCommand(control.ActionState, "Show whether the scheduler is paused and who changed it."),
	)
}

package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/gradual/internal/config"
	domain "github.com/oshokin/gradual/internal/domain/control"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/service/common"
)

// Action selects what the command does with the pause switch.
type Action string

const (
	// ActionPause stops the scheduler from evaluating alarms.
	ActionPause Action = "pause"
	// ActionResume lets the scheduler evaluate alarms again.
	ActionResume Action = "resume"
	// ActionState only reports the switch position.
	ActionState Action = "state"
)

// ErrUnknownAction is returned for an Action outside the known set.
var ErrUnknownAction = errors.New("unknown control action")

// Options configures a control command invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the control address from config when specified.
	ServerAddress string
	// Action is the operation to perform.
	Action Action
	// Output receives the human-readable state; os.Stdout when nil.
	Output io.Writer
}

// Run performs the requested action against the scheduler daemon.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "gradual-control")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if !logger.Configure(cfg.LogLevel, cfg.LogFormat) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "log_level", cfg.LogLevel)
	}

	serverAddress := cfg.ControlAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Sending control request",
		"server_address", serverAddress,
		"action", string(opts.Action),
		"actor", actor.String())

	var state *domain.State

	switch opts.Action {
	case ActionPause:
		state, err = client.Pause(ctx, actor)
	case ActionResume:
		state, err = client.Resume(ctx, actor)
	case ActionState:
		state, err = client.State(ctx, actor)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, opts.Action)
	}

	if err != nil {
		return err
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	_, err = fmt.Fprintln(output, FormatState(state))

	return err
}

// FormatState converts the switch position to a readable line.
func FormatState(state *domain.State) string {
	if state == nil {
		return "<nil state>"
	}

	status := "paused"
	if state.Running {
		status = "running"
	}

	if state.LastActor == nil {
		return status
	}

	// Extract timestamp with fallback for missing data.
	timestamp := "<unknown>"
	if !state.ChangedAt.IsZero() {
		timestamp = state.ChangedAt.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s by %s (%s)", status, state.LastActor, timestamp)
}

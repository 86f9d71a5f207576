package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	api "github.com/oshokin/gradual/internal/api/grpc/control"
	"github.com/oshokin/gradual/internal/astro"
	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/notify"
	"github.com/oshokin/gradual/internal/playback"
	"github.com/oshokin/gradual/internal/repository/alarms"
	"github.com/oshokin/gradual/internal/repository/state"
	"github.com/oshokin/gradual/internal/schedule"
)

// Options controls the scheduler daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the control service.
	ListenAddress string
	// Database provides an optional override of the SQLite file path.
	Database string
	// SingleInstance refuses to start when another daemon is running.
	SingleInstance bool
}

// ErrNoListenAddress indicates missing control service configuration.
var ErrNoListenAddress = errors.New("no control address configured")

// Run starts the scheduler loop and the control service, and blocks until
// ctx is canceled or the server stops.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "gradual-server")

	// Load configuration first to get daemon settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if !logger.Configure(settings.LogLevel, settings.LogFormat) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "log_level", settings.LogLevel)
	}

	if opts.SingleInstance {
		if err = ensureSingleInstance(); err != nil {
			return err
		}
	}

	// Database from config unless overridden by command line option.
	database := settings.Database
	if opts.Database != "" {
		database = opts.Database
	}

	listenAddress, err := resolveListenAddress(settings.ControlAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := alarms.Open(ctx, database)
	if err != nil {
		return fmt.Errorf("open alarm storage: %w", err)
	}

	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close alarm storage", "error", closeErr)
		}
	}()

	gate, err := restoreGate(ctx, state.NewFileRepository(settings.StateFile))
	if err != nil {
		return err
	}

	loop, err := newLoop(settings, repo, gate.Gate)
	if err != nil {
		return err
	}

	// Setup TCP listener for the control service.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterControlServiceServer(grpcServer, api.NewServer(gate))

	locationName := "unresolved"
	if settings.Location != nil {
		locationName = settings.Location.Name
	}

	logger.InfoKV(ctx, "Gradual scheduler listening",
		"listen_address", lis.Addr().String(),
		"database", database,
		"location", locationName,
		"paused", gate.Paused())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)

		_ = loop.Run(ctx)
	}()

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down control server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		cancel()
		<-loopDone

		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	<-loopDone
	logger.Info(ctx, "Gradual scheduler stopped")

	return nil
}

// newLoop builds the loop and its collaborators from the settings.
func newLoop(settings *config.Config, repo *alarms.SQLiteRepository, gate *Gate) (*Loop, error) {
	zone, err := settings.Location.Zone()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	solar, err := astro.NewSolar(settings.Location)
	if err != nil {
		return nil, fmt.Errorf("create solar provider: %w", err)
	}

	var (
		calculator = schedule.NewCalculator(schedule.NewResolver(solar, settings.Timeout))
		player     = playback.New(settings.Playback)
		notifier   = notify.New(settings.NotifyURLs, nil, settings.Timeout)
		defaults   = Defaults{
			Device:          settings.Playback.Device,
			Fade:            settings.Fade,
			Recommendations: settings.Recommendations,
		}
	)

	return NewLoop(
		repo,
		calculator,
		NewEvaluator(calculator, player, settings.Timeout),
		NewLifecycle(repo, player, notifier, defaults, settings.Timeout),
		gate,
		WithInterval(settings.PollInterval),
		WithClock(func() time.Time {
			return time.Now().In(zone)
		}),
	), nil
}

// resolveListenAddress determines the listen address for the control service.
// If override is provided, uses it directly. Otherwise uses configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoListenAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid control address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}

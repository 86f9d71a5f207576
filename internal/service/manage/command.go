package manage

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/gradual/internal/astro"
	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/repository/alarms"
	"github.com/oshokin/gradual/internal/schedule"
)

// Options selects the settings and store the CLI edits.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Database provides an optional override of the SQLite file path.
	Database string
}

// Open loads the settings, opens the alarm store and returns a manager over
// it. The returned close function releases the store.
func Open(ctx context.Context, opts *Options) (*Manager, func() error, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	if !logger.Configure(settings.LogLevel, settings.LogFormat) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "log_level", settings.LogLevel)
	}

	zone, err := settings.Location.Zone()
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone: %w", err)
	}

	solar, err := astro.NewSolar(settings.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("create solar provider: %w", err)
	}

	database := settings.Database
	if opts.Database != "" {
		database = opts.Database
	}

	repo, err := alarms.Open(ctx, database)
	if err != nil {
		return nil, nil, fmt.Errorf("open alarm storage: %w", err)
	}

	logger.DebugKV(ctx, "Alarm storage opened", "database", database)

	manager := NewManager(repo, schedule.NewResolver(solar, settings.Timeout), func() time.Time {
		return time.Now().In(zone)
	})

	return manager, repo.Close, nil
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

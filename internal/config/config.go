package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the gradual daemon and its CLI.
type Config struct {
	// ControlAddress is the gRPC address of the pause/resume control service.
	ControlAddress string `yaml:"control_addr"`
	// Database is the path to the SQLite file storing alarms.
	Database string `yaml:"database"`
	// StateFile is where the pause switch is kept across restarts.
	StateFile string `yaml:"state_file"`
	// PollInterval is the scheduler tick cadence.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Timeout bounds every call to playback, notification and RPC collaborators.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFormat selects the log encoder: console or json.
	LogFormat string `yaml:"log_format"`
	// Location is where astronomical moments are computed. Nil means unresolved.
	Location *Location `yaml:"location,omitempty"`
	// Playback configures the playback controller.
	Playback Playback `yaml:"playback"`
	// Fade holds default fade arguments merged under each alarm's own.
	Fade map[string]any `yaml:"fade,omitempty"`
	// Recommendations holds default recommendation arguments merged under each alarm's own.
	Recommendations map[string]any `yaml:"recommendations,omitempty"`
	// NotifyURLs are shoutrrr URLs told about every alarm that played.
	NotifyURLs []string `yaml:"notify_urls,omitempty"`
}

// Location describes the observer for sun computations.
type Location struct {
	// Name is a human readable label, e.g. "Bucharest".
	Name string `yaml:"name"`
	// Latitude in degrees, north positive.
	Latitude float64 `yaml:"latitude"`
	// Longitude in degrees, east positive.
	Longitude float64 `yaml:"longitude"`
	// Elevation above sea level in meters.
	Elevation float64 `yaml:"elevation"`
	// Timezone is an IANA zone name; empty means the local zone.
	Timezone string `yaml:"timezone"`
}

// Playback configures the external player.
type Playback struct {
	// Device is forwarded to the player as the target device.
	Device string `yaml:"device"`
	// PlayCommand starts playback; the request is written to its stdin as JSON.
	PlayCommand []string `yaml:"play_command,omitempty"`
	// StatusCommand prints {"is_playing": bool} on stdout.
	StatusCommand []string `yaml:"status_command,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "gradual-settings.yaml"

	// DefaultDatabaseFilename is the default SQLite filename for alarms.
	DefaultDatabaseFilename = "gradual.db"

	// DefaultStateFilename is the default file keeping the pause switch.
	DefaultStateFilename = "gradual-state.json"

	// DefaultControlAddress is where the control service listens by default.
	DefaultControlAddress = "127.0.0.1:6035"

	// DefaultPollInterval is the scheduler tick cadence.
	DefaultPollInterval = 40 * time.Second

	// DefaultTimeout is the default duration for collaborator calls.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errLatitudeOutOfRange is returned for latitudes outside [-90, 90].
	errLatitudeOutOfRange = errors.New("latitude must be within [-90, 90]")
	// errLongitudeOutOfRange is returned for longitudes outside [-180, 180].
	errLongitudeOutOfRange = errors.New("longitude must be within [-180, 180]")
	// errPollIntervalTooShort is returned when ticks would be shorter than a second.
	errPollIntervalTooShort = errors.New("poll interval must be at least one second")
	// errPollIntervalTooLong is returned when a tick could skip a whole minute.
	errPollIntervalTooLong = errors.New("poll interval must be shorter than one minute")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ControlAddress == "" {
		settings.ControlAddress = DefaultControlAddress
	}

	if _, _, err := net.SplitHostPort(settings.ControlAddress); err != nil {
		return fmt.Errorf("invalid control address: %w", err)
	}

	if settings.Database == "" {
		settings.Database = DefaultDatabaseFilename
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	switch {
	case settings.PollInterval == 0:
		settings.PollInterval = DefaultPollInterval
	case settings.PollInterval < time.Second:
		return errPollIntervalTooShort
	case settings.PollInterval >= time.Minute:
		return errPollIntervalTooLong
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.Location == nil {
		return nil
	}

	return settings.Location.validate()
}

// Zone resolves the configured timezone, falling back to time.Local.
func (l *Location) Zone() (*time.Location, error) {
	if l == nil || l.Timezone == "" {
		return time.Local, nil
	}

	zone, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", l.Timezone, err)
	}

	return zone, nil
}

func (l *Location) validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return errLatitudeOutOfRange
	}

	if l.Longitude < -180 || l.Longitude > 180 {
		return errLongitudeOutOfRange
	}

	if _, err := l.Zone(); err != nil {
		return err
	}

	return nil
}

package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/logger"
)

// Command runs external programs to control the player.
type Command struct {
	// play is the argv started for every playback request.
	play []string
	// status is the argv printing the player's Status; empty means unknown.
	status []string
	// device is used when a request does not name one.
	device string
}

// Logging only records playback requests. It reports the player busy until
// the end of the minute after the last request, so an alarm still matching
// the current minute is not played twice.
type Logging struct {
	// device is reported in the log record when a request does not name one.
	device string
	// now is the clock busy time is measured against.
	now func() time.Time

	// mu guards busyUntil.
	mu sync.Mutex
	// busyUntil is when the last request stops counting as playing.
	busyUntil time.Time
}

var (
	_ Controller = (*Command)(nil)
	_ Controller = (*Logging)(nil)
)

// New picks the controller matching the configuration: a Command when a play
// command is configured, Logging otherwise.
func New(cfg config.Playback) Controller {
	if len(cfg.PlayCommand) == 0 {
		return NewLogging(cfg.Device, nil)
	}

	return NewCommand(cfg)
}

// NewLogging creates a logging controller. A nil now uses time.Now.
func NewLogging(device string, now func() time.Time) *Logging {
	if now == nil {
		now = time.Now
	}

	return &Logging{
		device: device,
		now:    now,
	}
}

// NewCommand creates a command controller from the playback settings.
func NewCommand(cfg config.Playback) *Command {
	return &Command{
		play:   cfg.PlayCommand,
		status: cfg.StatusCommand,
		device: cfg.Device,
	}
}

// CurrentPlayback runs the status command and decodes its output.
// It returns nil without error when no status command is configured.
func (c *Command) CurrentPlayback(ctx context.Context) (*Status, error) {
	if len(c.status) == 0 {
		return nil, nil //nolint:nilnil // Unknown status is not an error.
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.status[0], c.status[1:]...) //nolint:gosec // Configured by the owner.
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: run status command: %w: %s", ErrPlayback, err, strings.TrimSpace(stderr.String()))
	}

	var status Status
	if err = json.Unmarshal(bytes.TrimSpace(output), &status); err != nil {
		return nil, fmt.Errorf("%w: decode status: %w", ErrPlayback, err)
	}

	return &status, nil
}

// Play runs the play command with the JSON encoded request on stdin.
func (c *Command) Play(ctx context.Context, request Request) error {
	if request.Device == "" {
		request.Device = c.device
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", ErrPlayback, err)
	}

	cmd := exec.CommandContext(ctx, c.play[0], c.play[1:]...) //nolint:gosec // Configured by the owner.
	cmd.Stdin = bytes.NewReader(payload)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: run play command: %w: %s", ErrPlayback, err, strings.TrimSpace(string(output)))
	}

	logger.DebugKV(ctx, "Play command finished", "alarm_id", request.AlarmID, "output", strings.TrimSpace(string(output)))

	return nil
}

// CurrentPlayback reports playing until the end of the minute after the last Play.
func (l *Logging) CurrentPlayback(context.Context) (*Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &Status{IsPlaying: l.now().Before(l.busyUntil)}, nil
}

// Play logs the request.
func (l *Logging) Play(ctx context.Context, request Request) error {
	if request.Device == "" {
		request.Device = l.device
	}

	logger.InfoKV(ctx, "Playback requested",
		"alarm_id", request.AlarmID,
		"device", request.Device,
		"fade_args", request.FadeArgs,
		"recommendation_args", request.RecommendationArgs)

	l.mu.Lock()
	l.busyUntil = l.now().Truncate(time.Minute).Add(2 * time.Minute)
	l.mu.Unlock()

	return nil
}

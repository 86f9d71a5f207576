package playback

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/domain/alarm"
)

// TestNew_PicksController returns the logging controller without a play command.
func TestNew_PicksController(t *testing.T) {
	t.Parallel()

	require.IsType(t, &Logging{}, New(config.Playback{Device: "kitchen"}))
	require.IsType(t, &Command{}, New(config.Playback{PlayCommand: []string{"true"}}))
}

// TestCommand_Play writes the request to the command's stdin and fills the default device.
func TestCommand_Play(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "request.json")
	controller := NewCommand(config.Playback{
		Device:      "bedroom",
		PlayCommand: []string{"sh", "-c", `cat > "$0"`, out},
	})

	request := Request{
		AlarmID:            uuid.New(),
		FadeArgs:           alarm.Args{"duration": float64(600)},
		RecommendationArgs: alarm.Args{"seed_genres": "jazz"},
	}
	require.NoError(t, controller.Play(context.Background(), request))

	contents, err := os.ReadFile(out)
	require.NoError(t, err)

	var got Request
	require.NoError(t, json.Unmarshal(contents, &got))

	request.Device = "bedroom"
	require.Equal(t, request, got)
}

// TestCommand_PlayFailure wraps a failing command with ErrPlayback and keeps its output.
func TestCommand_PlayFailure(t *testing.T) {
	t.Parallel()

	controller := NewCommand(config.Playback{
		PlayCommand: []string{"sh", "-c", "echo device offline; exit 3"},
	})

	err := controller.Play(context.Background(), Request{AlarmID: uuid.New()})
	require.ErrorIs(t, err, ErrPlayback)
	require.ErrorContains(t, err, "device offline")
}

// TestCommand_CurrentPlayback decodes the status command output.
func TestCommand_CurrentPlayback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	playing := NewCommand(config.Playback{
		PlayCommand:   []string{"true"},
		StatusCommand: []string{"sh", "-c", `echo '{"is_playing": true}'`},
	})

	status, err := playing.CurrentPlayback(ctx)
	require.NoError(t, err)
	require.Equal(t, &Status{IsPlaying: true}, status)

	unknown := NewCommand(config.Playback{PlayCommand: []string{"true"}})

	status, err = unknown.CurrentPlayback(ctx)
	require.NoError(t, err)
	require.Nil(t, status)

	garbage := NewCommand(config.Playback{
		PlayCommand:   []string{"true"},
		StatusCommand: []string{"sh", "-c", "echo not json"},
	})

	_, err = garbage.CurrentPlayback(ctx)
	require.ErrorIs(t, err, ErrPlayback)

	failing := NewCommand(config.Playback{
		PlayCommand:   []string{"true"},
		StatusCommand: []string{"sh", "-c", "echo no player >&2; exit 1"},
	})

	_, err = failing.CurrentPlayback(ctx)
	require.ErrorIs(t, err, ErrPlayback)
	require.ErrorContains(t, err, "no player")
}

// TestLogging_BusyAfterPlay stays busy until the end of the minute after a request.
func TestLogging_BusyAfterPlay(t *testing.T) {
	t.Parallel()

	var (
		ctx = context.Background()
		now = time.Date(2024, time.June, 19, 7, 0, 40, 0, time.UTC)
	)

	controller := NewLogging("kitchen", func() time.Time { return now })

	status, err := controller.CurrentPlayback(ctx)
	require.NoError(t, err)
	require.False(t, status.IsPlaying)

	require.NoError(t, controller.Play(ctx, Request{AlarmID: uuid.New()}))

	for _, at := range []time.Time{
		now,
		time.Date(2024, time.June, 19, 7, 1, 0, 0, time.UTC),
		time.Date(2024, time.June, 19, 7, 1, 59, 0, time.UTC),
	} {
		now = at

		status, err = controller.CurrentPlayback(ctx)
		require.NoError(t, err)
		require.True(t, status.IsPlaying, at)
	}

	now = time.Date(2024, time.June, 19, 7, 2, 0, 0, time.UTC)

	status, err = controller.CurrentPlayback(ctx)
	require.NoError(t, err)
	require.False(t, status.IsPlaying)
}

// TestLogging reports an idle player and accepts every request.
func TestLogging(t *testing.T) {
	t.Parallel()

	controller := New(config.Playback{})

	status, err := controller.CurrentPlayback(context.Background())
	require.NoError(t, err)
	require.False(t, status.IsPlaying)

	require.NoError(t, controller.Play(context.Background(), Request{AlarmID: uuid.New()}))
}

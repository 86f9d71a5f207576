package astro

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/gradual/internal/config"
)

// london is a well documented observer used across the tests.
//
//nolint:gochecknoglobals // Test fixture.
var london = &config.Location{
	Name:      "London",
	Latitude:  51.5074,
	Longitude: -0.1278,
	Timezone:  "UTC",
}

// midsummer is the calendar date the assertions below refer to.
//
//nolint:gochecknoglobals // Test fixture.
var midsummer = time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)

// TestSolar_PointEvents compares computed instants with published almanac times.
func TestSolar_PointEvents(t *testing.T) {
	t.Parallel()

	solar, err := NewSolar(london)
	require.NoError(t, err)

	cases := map[string]time.Time{
		"sunrise":    time.Date(2024, time.June, 21, 3, 43, 0, 0, time.UTC),
		"solar_noon": time.Date(2024, time.June, 21, 12, 2, 0, 0, time.UTC),
		"sunset":     time.Date(2024, time.June, 21, 20, 21, 0, 0, time.UTC),
	}
	for name, want := range cases {
		event, err := solar.Event(context.Background(), name, midsummer)
		require.NoError(t, err, name)
		require.False(t, event.IsInterval(), name)
		require.WithinDuration(t, want, event.Start, 3*time.Minute, name)
	}

	dawn, err := solar.Event(context.Background(), "dawn", midsummer)
	require.NoError(t, err)

	dusk, err := solar.Event(context.Background(), "dusk", midsummer)
	require.NoError(t, err)

	sunrise, err := solar.Event(context.Background(), "sunrise", midsummer)
	require.NoError(t, err)

	require.True(t, dawn.Start.Before(sunrise.Start))
	require.True(t, dusk.Start.After(cases["sunset"]))
}

// TestSolar_IntervalEvents checks interval ordering and nesting of the morning spans.
func TestSolar_IntervalEvents(t *testing.T) {
	t.Parallel()

	solar, err := NewSolar(london)
	require.NoError(t, err)

	ctx := context.Background()

	blue, err := solar.Event(ctx, "blue_hour", midsummer)
	require.NoError(t, err)

	golden, err := solar.Event(ctx, "golden_hour", midsummer)
	require.NoError(t, err)

	twilight, err := solar.Event(ctx, "twilight", midsummer)
	require.NoError(t, err)

	for _, e := range []Event{blue, golden, twilight} {
		require.True(t, e.IsInterval())
		require.True(t, e.Start.Before(e.End))
	}

	// Blue hour hands over to twilight, twilight to the golden hour.
	require.Equal(t, blue.End, twilight.Start)
	require.Equal(t, twilight.End, golden.Start)

	sunrise, err := solar.Event(ctx, "sunrise", midsummer)
	require.NoError(t, err)
	require.Equal(t, sunrise.Start, golden.Start)
}

// TestSolar_DateIsCalendarDay resolves the same event for any time within a day.
func TestSolar_DateIsCalendarDay(t *testing.T) {
	t.Parallel()

	solar, err := NewSolar(london)
	require.NoError(t, err)

	ctx := context.Background()

	early, err := solar.Event(ctx, "sunset", midsummer)
	require.NoError(t, err)

	late, err := solar.Event(ctx, "sunset", midsummer.Add(23*time.Hour))
	require.NoError(t, err)

	require.Equal(t, early.Start, late.Start)
	require.Equal(t, midsummer.Day(), early.Start.Day())
}

// TestSolar_Errors covers the unresolved location, unknown names and polar days.
func TestSolar_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	unresolved, err := NewSolar(nil)
	require.NoError(t, err)

	_, err = unresolved.Event(ctx, "sunrise", midsummer)
	require.ErrorIs(t, err, ErrLocationUnresolved)

	solar, err := NewSolar(london)
	require.NoError(t, err)

	_, err = solar.Event(ctx, "moonrise", midsummer)
	require.ErrorIs(t, err, ErrEventUnknown)

	svalbard, err := NewSolar(&config.Location{Latitude: 78.22, Longitude: 15.65, Timezone: "UTC"})
	require.NoError(t, err)

	_, err = svalbard.Event(ctx, "sunset", midsummer)
	require.ErrorIs(t, err, ErrNoEvent)

	_, err = svalbard.Event(ctx, "golden_hour", midsummer)
	require.ErrorIs(t, err, ErrNoEvent)

	noon, err := svalbard.Event(ctx, "solar_noon", midsummer)
	require.NoError(t, err)
	require.Equal(t, midsummer.Day(), noon.Start.Day())

	_, err = NewSolar(&config.Location{Timezone: "Nowhere/Land"})
	require.Error(t, err)
}

// TestSolar_Zone expresses results in the configured timezone.
func TestSolar_Zone(t *testing.T) {
	t.Parallel()

	solar, err := NewSolar(&config.Location{
		Latitude:  london.Latitude,
		Longitude: london.Longitude,
		Timezone:  "Europe/London",
	})
	require.NoError(t, err)

	event, err := solar.Event(context.Background(), "sunrise", midsummer)
	require.NoError(t, err)
	require.Equal(t, "Europe/London", event.Start.Location().String())
	require.Equal(t, 4, event.Start.Hour())
}

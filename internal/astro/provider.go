package astro

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocationUnresolved is returned when no observer location is configured.
	ErrLocationUnresolved = errors.New("location is not configured")
	// ErrEventUnknown is returned for event names the provider cannot compute.
	ErrEventUnknown = errors.New("unknown astronomical event")
	// ErrNoEvent is returned when the sun never reaches the required elevation that day.
	ErrNoEvent = errors.New("event does not occur on this date")
)

// Event is the outcome of resolving a named celestial event.
// End is zero for point events such as sunrise.
type Event struct {
	// Start is the instant of a point event or the beginning of an interval.
	Start time.Time
	// End closes an interval event; zero for point events.
	End time.Time
}

// IsInterval reports whether the event spans a period of time.
func (e Event) IsInterval() bool {
	return !e.End.IsZero()
}

// Provider resolves named events for a calendar date.
// Only the year, month and day of date are significant.
type Provider interface {
	Event(ctx context.Context, name string, date time.Time) (Event, error)
}

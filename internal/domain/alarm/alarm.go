package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StaleAdjustmentWindow is how long after the previous occurrence the
// LastSnoozeMinutes and LastOffsetMinutes copies stay meaningful.
const StaleAdjustmentWindow = 6 * time.Hour

var (
	// ErrInvalidHour is returned for hours outside [0, 23].
	ErrInvalidHour = errors.New("hour must be within [0, 23]")
	// ErrInvalidMinute is returned for minutes outside [0, 59].
	ErrInvalidMinute = errors.New("minute must be within [0, 59]")
	// ErrMissingID is returned when an alarm has no identifier.
	ErrMissingID = errors.New("alarm id is required")
)

// Alarm is one scheduled playback with its transient adjustments.
type Alarm struct {
	// ID uniquely identifies the alarm.
	ID uuid.UUID
	// Hour is the fixed clock hour; meaningful only when Moment is empty.
	Hour int
	// Minute is the fixed clock minute; meaningful only when Moment is empty.
	Minute int
	// Days are the weekdays the alarm may fire on.
	Days Days
	// Moment names an astronomical event used instead of Hour:Minute.
	Moment string
	// Recurrent alarms re-arm after firing; others disable themselves.
	Recurrent bool
	// Enabled alarms take part in scheduling.
	Enabled bool
	// Temporary alarms are deleted right after their first fire.
	Temporary bool
	// Skip suppresses the next playback once.
	Skip bool
	// OffsetMinutes shifts the next occurrence, consumed on fire.
	OffsetMinutes int
	// SnoozeMinutes delays the next occurrence, consumed on fire.
	SnoozeMinutes int
	// LastOffsetMinutes is the consumed offset, used for the previous occurrence.
	LastOffsetMinutes int
	// LastSnoozeMinutes is the consumed snooze, used for the previous occurrence.
	LastSnoozeMinutes int
	// FadeArgs are merged over the configured fade defaults.
	FadeArgs Args
	// RecommendationArgs are merged over the configured recommendation defaults.
	RecommendationArgs Args
	// CreatedAt is when the alarm was first stored.
	CreatedAt time.Time
}

// New returns an enabled fixed-time alarm with a fresh ID.
// Recurrence defaults to true when more than one day is given.
func New(hour, minute int, days Days) *Alarm {
	return &Alarm{
		ID:        uuid.New(),
		Hour:      hour,
		Minute:    minute,
		Days:      days,
		Recurrent: len(days) > 1,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}

// Validate checks every invariant the scheduler depends on.
func (a *Alarm) Validate() error {
	if a.ID == uuid.Nil {
		return ErrMissingID
	}

	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("%w: %d", ErrInvalidHour, a.Hour)
	}

	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("%w: %d", ErrInvalidMinute, a.Minute)
	}

	if err := a.Days.Validate(); err != nil {
		return err
	}

	return ValidateMoment(a.Moment)
}

// ConsumeFire applies the bookkeeping of a non-temporary fire: one-shot
// alarms are disabled, offset and snooze decay into their Last* copies and a
// pending skip is cleared. It reports whether the playback must be suppressed.
func (a *Alarm) ConsumeFire() (skipped bool) {
	if !a.Recurrent {
		a.Enabled = false
	}

	if a.OffsetMinutes != 0 {
		a.LastOffsetMinutes = a.OffsetMinutes
		a.OffsetMinutes = 0
	}

	if a.SnoozeMinutes != 0 {
		a.LastSnoozeMinutes = a.SnoozeMinutes
		a.SnoozeMinutes = 0
	}

	if !a.Skip {
		return false
	}

	a.Skip = false

	return true
}

// ClearLastAdjustments forgets the consumed snooze and offset.
// It reports whether anything changed.
func (a *Alarm) ClearLastAdjustments() bool {
	if a.LastSnoozeMinutes == 0 && a.LastOffsetMinutes == 0 {
		return false
	}

	a.LastSnoozeMinutes = 0
	a.LastOffsetMinutes = 0

	return true
}

// Clone returns a deep copy of the alarm.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a
	cloned.Days = a.Days.Clone()
	cloned.FadeArgs = a.FadeArgs.Clone()
	cloned.RecommendationArgs = a.RecommendationArgs.Clone()

	return &cloned
}

package schedule

import (
	"context"
	"time"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

// daysInWeek is the weekly rollover applied when a computed instant lands in the past.
const daysInWeek = 7

// MomentResolver resolves moment names for a calendar day.
type MomentResolver interface {
	Resolve(ctx context.Context, moment string, date time.Time) (time.Time, error)
}

// Calculator computes alarm occurrences relative to a given "now".
// All weekday arithmetic happens in now's location.
type Calculator struct {
	// resolver handles alarms defined by a moment.
	resolver MomentResolver
}

// NewCalculator creates a calculator using resolver for moment alarms.
func NewCalculator(resolver MomentResolver) *Calculator {
	return &Calculator{
		resolver: resolver,
	}
}

// IsDueToday reports whether today's occurrence, snooze included,
// has not passed yet at minute precision.
func (c *Calculator) IsDueToday(ctx context.Context, a *alarm.Alarm, now time.Time) (bool, error) {
	at, err := c.timeOn(ctx, a, now)
	if err != nil {
		return false, err
	}

	if a.SnoozeMinutes != 0 {
		at = at.Add(minutes(a.SnoozeMinutes))
	}

	return now.Hour() < at.Hour() || (now.Hour() == at.Hour() && now.Minute() <= at.Minute()), nil
}

// NextDay returns the weekday of the next occurrence, possibly today.
func (c *Calculator) NextDay(ctx context.Context, a *alarm.Alarm, now time.Time) (alarm.Weekday, error) {
	dueToday, err := c.IsDueToday(ctx, a, now)
	if err != nil {
		return 0, err
	}

	return a.Days.FirstFrom(alarm.WeekdayOf(now), !dueToday), nil
}

// PreviousDay returns the weekday of the previous occurrence, possibly today.
func (c *Calculator) PreviousDay(ctx context.Context, a *alarm.Alarm, now time.Time) (alarm.Weekday, error) {
	dueToday, err := c.IsDueToday(ctx, a, now)
	if err != nil {
		return 0, err
	}

	return a.Days.LastBefore(alarm.WeekdayOf(now), !dueToday), nil
}

// NextTime returns the instant the alarm fires next. Snooze is applied
// before the weekly rollover check, offset after it.
func (c *Calculator) NextTime(ctx context.Context, a *alarm.Alarm, now time.Time) (time.Time, error) {
	day, err := c.NextDay(ctx, a, now)
	if err != nil {
		return time.Time{}, err
	}

	next, err := c.timeOn(ctx, a, shiftDays(now, int(day-alarm.WeekdayOf(now))))
	if err != nil {
		return time.Time{}, err
	}

	if a.SnoozeMinutes != 0 {
		next = next.Add(minutes(a.SnoozeMinutes))
	}

	if next.Before(now.Truncate(time.Minute)) {
		next = next.AddDate(0, 0, daysInWeek)
	}

	if a.OffsetMinutes != 0 {
		next = next.Add(minutes(a.OffsetMinutes))
	}

	return next, nil
}

// PreviousTime returns the instant the alarm last fired (or would have),
// using the consumed LastSnoozeMinutes and LastOffsetMinutes.
func (c *Calculator) PreviousTime(ctx context.Context, a *alarm.Alarm, now time.Time) (time.Time, error) {
	day, err := c.PreviousDay(ctx, a, now)
	if err != nil {
		return time.Time{}, err
	}

	previous, err := c.timeOn(ctx, a, shiftDays(now, -int(alarm.WeekdayOf(now)-day)))
	if err != nil {
		return time.Time{}, err
	}

	if previous.After(now.Truncate(time.Minute)) {
		previous = previous.AddDate(0, 0, -daysInWeek)
	}

	if a.LastSnoozeMinutes != 0 {
		previous = previous.Add(minutes(a.LastSnoozeMinutes))
	}

	if a.LastOffsetMinutes != 0 {
		previous = previous.Add(minutes(a.LastOffsetMinutes))
	}

	return previous, nil
}

// Decay clears LastSnoozeMinutes and LastOffsetMinutes once more than
// alarm.StaleAdjustmentWindow has elapsed since the previous occurrence.
// It is idempotent and reports whether the alarm changed.
func (c *Calculator) Decay(ctx context.Context, a *alarm.Alarm, now time.Time) (bool, error) {
	if a.LastSnoozeMinutes == 0 && a.LastOffsetMinutes == 0 {
		return false, nil
	}

	previous, err := c.PreviousTime(ctx, a, now)
	if err != nil {
		return false, err
	}

	if now.Sub(previous) <= alarm.StaleAdjustmentWindow {
		return false, nil
	}

	return a.ClearLastAdjustments(), nil
}

// timeOn returns the alarm's base occurrence on date's calendar day.
func (c *Calculator) timeOn(ctx context.Context, a *alarm.Alarm, date time.Time) (time.Time, error) {
	if a.Moment != "" {
		return c.resolver.Resolve(ctx, a.Moment, date)
	}

	year, month, day := date.Date()

	return time.Date(year, month, day, a.Hour, a.Minute, 0, 0, date.Location()), nil
}

// shiftDays returns midnight of the calendar day delta days away from t.
func shiftDays(t time.Time, delta int) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day+delta, 0, 0, 0, 0, t.Location())
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

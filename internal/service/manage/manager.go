package manage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/repository/alarms"
	"github.com/oshokin/gradual/internal/schedule"
)

var (
	// ErrNoTime is returned when an alarm has neither a clock time, a moment nor a delay.
	ErrNoTime = errors.New("one of clock time, moment or delay is required")
	// ErrConflictingTime is returned when more than one way of timing is given.
	ErrConflictingTime = errors.New("clock time, moment and delay are mutually exclusive")
	// ErrInvalidClock is returned for clock times not in HH:MM form.
	ErrInvalidClock = errors.New("clock time must be HH:MM")
	// ErrAmbiguousID is returned when an ID prefix matches several alarms.
	ErrAmbiguousID = errors.New("alarm id prefix is ambiguous")
	// ErrNothingToModify is returned by Modify when no field is set.
	ErrNothingToModify = errors.New("nothing to modify")
)

// Store is the subset of the alarm repository used by the manager.
type Store interface {
	List(ctx context.Context) ([]*alarm.Alarm, error)
	Get(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error)
	Save(ctx context.Context, a *alarm.Alarm) error
	Delete(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, fn alarms.MutateFunc) (*alarm.Alarm, error)
}

// AddRequest describes a new alarm. Exactly one of Clock, Moment and In is set.
type AddRequest struct {
	// Clock is a fixed time of day in HH:MM form.
	Clock string
	// Moment is an astronomical moment name.
	Moment string
	// In schedules a one-off alarm this far from now.
	In time.Duration
	// Days is a comma separated weekday list; empty picks the next matching day.
	Days string
	// Recurrent overrides the default of recurring when more than one day is set.
	Recurrent *bool
	// Temporary alarms are deleted after their first fire.
	Temporary bool
	// Disabled stores the alarm without scheduling it.
	Disabled bool
	// OffsetMinutes shifts the first occurrence.
	OffsetMinutes int
	// FadeArgs override the configured fade defaults.
	FadeArgs alarm.Args
	// RecommendationArgs override the configured recommendation defaults.
	RecommendationArgs alarm.Args
}

// ModifyRequest changes an existing alarm. Nil fields are left untouched.
type ModifyRequest struct {
	// Clock moves the alarm to a fixed time of day and drops its moment.
	Clock *string
	// Moment binds the alarm to an astronomical moment.
	Moment *string
	// Days replaces the weekday list.
	Days *string
	// Recurrent overrides recurrence; when nil it follows a Days change.
	Recurrent *bool
	// Enabled switches scheduling on or off.
	Enabled *bool
	// Temporary marks the alarm for deletion after its first fire.
	Temporary *bool
	// FadeArgs are merged over the stored fade arguments.
	FadeArgs alarm.Args
	// EraseFade drops the stored fade arguments before merging.
	EraseFade bool
	// RecommendationArgs are merged over the stored recommendation arguments.
	RecommendationArgs alarm.Args
	// EraseRecommendations drops the stored recommendation arguments before merging.
	EraseRecommendations bool
}

func (r *ModifyRequest) empty() bool {
	return r.Clock == nil && r.Moment == nil && r.Days == nil &&
		r.Recurrent == nil && r.Enabled == nil && r.Temporary == nil &&
		len(r.FadeArgs) == 0 && !r.EraseFade &&
		len(r.RecommendationArgs) == 0 && !r.EraseRecommendations
}

// Filter narrows List results. The zero value matches everything.
type Filter struct {
	// Day keeps alarms scheduled on this weekday.
	Day *alarm.Weekday
	// Moment keeps alarms bound to this moment.
	Moment string
	// Hour keeps fixed-time alarms ringing at this hour.
	Hour *int
	// ExactTime keeps fixed-time alarms when true and moment alarms when false.
	ExactTime *bool
	// Recurrent keeps alarms with this recurrence.
	Recurrent *bool
	// Temporary keeps alarms with this temporary flag.
	Temporary *bool
	// EnabledOnly drops disabled alarms.
	EnabledOnly bool
}

// Entry is a listed alarm with its next occurrence.
type Entry struct {
	// Alarm is the stored record.
	Alarm *alarm.Alarm
	// Next is the next occurrence; zero when NextErr is set.
	Next time.Time
	// NextErr explains why Next could not be computed.
	NextErr error
}

// Manager applies CLI edits to the alarm store.
type Manager struct {
	// store persists alarms.
	store Store
	// resolver turns moments into instants.
	resolver schedule.MomentResolver
	// calculator computes next occurrences for listings.
	calculator *schedule.Calculator
	// now returns the current time in the schedule's location.
	now func() time.Time
}

// NewManager creates a manager. A nil now uses time.Now.
func NewManager(store Store, resolver schedule.MomentResolver, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}

	return &Manager{
		store:      store,
		resolver:   resolver,
		calculator: schedule.NewCalculator(resolver),
		now:        now,
	}
}

// Add creates and stores a new alarm.
func (m *Manager) Add(ctx context.Context, req *AddRequest) (*alarm.Alarm, error) {
	if err := checkTiming(req); err != nil {
		return nil, err
	}

	var (
		now  = m.now()
		days alarm.Days
		err  error
	)

	if req.Days != "" {
		if days, err = alarm.ParseDays(req.Days); err != nil {
			return nil, fmt.Errorf("parse days: %w", err)
		}
	}

	a := &alarm.Alarm{
		ID:                 uuid.New(),
		Enabled:            !req.Disabled,
		Temporary:          req.Temporary,
		OffsetMinutes:      req.OffsetMinutes,
		FadeArgs:           req.FadeArgs.Clone(),
		RecommendationArgs: req.RecommendationArgs.Clone(),
		CreatedAt:          now,
	}

	switch {
	case req.Moment != "":
		if err = alarm.ValidateMoment(req.Moment); err != nil {
			return nil, err
		}

		a.Moment = req.Moment

		if days == nil {
			if days, err = m.momentDays(ctx, req.Moment, now); err != nil {
				return nil, err
			}
		}
	default:
		target, err := targetTime(req, now)
		if err != nil {
			return nil, err
		}

		a.Hour, a.Minute = target.Hour(), target.Minute()

		if days == nil {
			days = alarm.Days{alarm.WeekdayOf(target)}
		}
	}

	a.Days = days

	a.Recurrent = len(days) > 1
	if req.Recurrent != nil {
		a.Recurrent = *req.Recurrent
	}

	if err = m.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save alarm: %w", err)
	}

	return a, nil
}

// List returns the stored alarms matching filter with their next occurrence.
func (m *Manager) List(ctx context.Context, filter Filter) ([]Entry, error) {
	list, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	now := m.now()
	entries := make([]Entry, 0, len(list))

	for _, a := range list {
		if !filter.matches(a) {
			continue
		}

		next, err := m.calculator.NextTime(ctx, a, now)
		entries = append(entries, Entry{
			Alarm:   a,
			Next:    next,
			NextErr: err,
		})
	}

	return entries, nil
}

// Remove deletes the alarm referenced by ref.
func (m *Manager) Remove(ctx context.Context, ref string) (*alarm.Alarm, error) {
	a, err := m.Find(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err = m.store.Delete(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("delete alarm: %w", err)
	}

	return a, nil
}

// Snooze delays the next occurrence by minutes. Snoozes accumulate.
func (m *Manager) Snooze(ctx context.Context, ref string, minutes int) (*alarm.Alarm, error) {
	return m.update(ctx, ref, func(a *alarm.Alarm) error {
		a.SnoozeMinutes += minutes

		return nil
	})
}

// Offset replaces the shift applied to the next occurrence.
func (m *Manager) Offset(ctx context.Context, ref string, minutes int) (*alarm.Alarm, error) {
	return m.update(ctx, ref, func(a *alarm.Alarm) error {
		a.OffsetMinutes = minutes

		return nil
	})
}

// Skip sets or clears the one-time playback suppression.
func (m *Manager) Skip(ctx context.Context, ref string, skip bool) (*alarm.Alarm, error) {
	return m.update(ctx, ref, func(a *alarm.Alarm) error {
		a.Skip = skip

		return nil
	})
}

// SetEnabled switches scheduling of the alarm on or off.
func (m *Manager) SetEnabled(ctx context.Context, ref string, enabled bool) (*alarm.Alarm, error) {
	return m.update(ctx, ref, func(a *alarm.Alarm) error {
		a.Enabled = enabled

		return nil
	})
}

// Modify applies req to the alarm referenced by ref in a single update.
func (m *Manager) Modify(ctx context.Context, ref string, req *ModifyRequest) (*alarm.Alarm, error) {
	if req.empty() {
		return nil, ErrNothingToModify
	}

	if req.Clock != nil && req.Moment != nil {
		return nil, ErrConflictingTime
	}

	var (
		clock time.Time
		days  alarm.Days
		err   error
	)

	if req.Clock != nil {
		if clock, err = time.Parse("15:04", *req.Clock); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidClock, *req.Clock)
		}
	}

	if req.Moment != nil {
		if *req.Moment == "" {
			return nil, ErrNoTime
		}

		if err = alarm.ValidateMoment(*req.Moment); err != nil {
			return nil, err
		}
	}

	if req.Days != nil {
		if days, err = alarm.ParseDays(*req.Days); err != nil {
			return nil, fmt.Errorf("parse days: %w", err)
		}
	}

	return m.update(ctx, ref, func(a *alarm.Alarm) error {
		switch {
		case req.Clock != nil:
			a.Hour, a.Minute, a.Moment = clock.Hour(), clock.Minute(), ""
		case req.Moment != nil:
			a.Hour, a.Minute, a.Moment = 0, 0, *req.Moment
		}

		if req.Days != nil {
			a.Days = days
			a.Recurrent = len(days) > 1
		}

		if req.Recurrent != nil {
			a.Recurrent = *req.Recurrent
		}

		if req.Enabled != nil {
			a.Enabled = *req.Enabled
		}

		if req.Temporary != nil {
			a.Temporary = *req.Temporary
		}

		a.FadeArgs = mergeStored(a.FadeArgs, req.FadeArgs, req.EraseFade)
		a.RecommendationArgs = mergeStored(a.RecommendationArgs, req.RecommendationArgs, req.EraseRecommendations)

		return nil
	})
}

// Clear deletes every alarm, or only the disabled ones, and reports how many went.
func (m *Manager) Clear(ctx context.Context, disabledOnly bool) (int, error) {
	list, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list alarms: %w", err)
	}

	removed := 0

	for _, a := range list {
		if disabledOnly && a.Enabled {
			continue
		}

		err = m.store.Delete(ctx, a.ID)

		switch {
		case err == nil:
			removed++
		case errors.Is(err, alarms.ErrNotFound):
			// Removed concurrently.
		default:
			return removed, fmt.Errorf("delete alarm %s: %w", a.ID, err)
		}
	}

	return removed, nil
}

// Find resolves a full alarm ID or a unique prefix of one.
func (m *Manager) Find(ctx context.Context, ref string) (*alarm.Alarm, error) {
	if id, err := uuid.Parse(ref); err == nil {
		a, err := m.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get alarm %s: %w", ref, err)
		}

		return a, nil
	}

	list, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	var found *alarm.Alarm

	prefix := strings.ToLower(ref)

	for _, a := range list {
		if prefix == "" || !strings.HasPrefix(a.ID.String(), prefix) {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
		}

		found = a
	}

	if found == nil {
		return nil, fmt.Errorf("alarm %s: %w", ref, alarms.ErrNotFound)
	}

	return found, nil
}

func (m *Manager) update(ctx context.Context, ref string, fn alarms.MutateFunc) (*alarm.Alarm, error) {
	a, err := m.Find(ctx, ref)
	if err != nil {
		return nil, err
	}

	updated, err := m.store.Update(ctx, a.ID, fn)
	if err != nil {
		return nil, fmt.Errorf("update alarm: %w", err)
	}

	return updated, nil
}

// momentDays picks today when the moment is still ahead, tomorrow otherwise.
func (m *Manager) momentDays(ctx context.Context, moment string, now time.Time) (alarm.Days, error) {
	today, err := m.resolver.Resolve(ctx, moment, now)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", moment, err)
	}

	if today.Before(now) {
		return alarm.Days{alarm.WeekdayOf(now.AddDate(0, 0, 1))}, nil
	}

	return alarm.Days{alarm.WeekdayOf(now)}, nil
}

// targetTime returns the first instant matching a clock time or delay.
// A clock time already past today lands on tomorrow.
func targetTime(req *AddRequest, now time.Time) (time.Time, error) {
	if req.In > 0 {
		return now.Add(req.In), nil
	}

	clock, err := time.Parse("15:04", req.Clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, req.Clock)
	}

	year, month, day := now.Date()
	target := time.Date(year, month, day, clock.Hour(), clock.Minute(), 0, 0, now.Location())

	if target.Before(now.Truncate(time.Minute)) {
		target = target.AddDate(0, 0, 1)
	}

	return target, nil
}

// mergeStored layers overrides on stored arguments, optionally starting empty.
func mergeStored(stored, overrides alarm.Args, erase bool) alarm.Args {
	if erase {
		stored = nil
	}

	if len(overrides) == 0 {
		return stored
	}

	return alarm.MergeArgs(stored, overrides)
}

func checkTiming(req *AddRequest) error {
	set := 0

	for _, given := range []bool{req.Clock != "", req.Moment != "", req.In > 0} {
		if given {
			set++
		}
	}

	switch set {
	case 0:
		return ErrNoTime
	case 1:
		return nil
	default:
		return ErrConflictingTime
	}
}

func (f Filter) matches(a *alarm.Alarm) bool {
	if f.EnabledOnly && !a.Enabled {
		return false
	}

	if f.Day != nil && !a.Days.Contains(*f.Day) {
		return false
	}

	if f.Moment != "" && a.Moment != f.Moment {
		return false
	}

	exact := a.Moment == ""

	if f.ExactTime != nil && *f.ExactTime != exact {
		return false
	}

	if f.Hour != nil && (!exact || a.Hour != *f.Hour) {
		return false
	}

	if f.Recurrent != nil && *f.Recurrent != a.Recurrent {
		return false
	}

	return f.Temporary == nil || *f.Temporary == a.Temporary
}

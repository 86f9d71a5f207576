package manage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/repository/alarms"
)

// wednesday is 2024-06-19 10:00 UTC.
var wednesday = time.Date(2024, time.June, 19, 10, 0, 0, 0, time.UTC)

// fixedResolver resolves sunrise to 06:42 and sunset to 21:00 on any date.
type fixedResolver struct{}

// Resolve implements schedule.MomentResolver.
func (fixedResolver) Resolve(_ context.Context, moment string, date time.Time) (time.Time, error) {
	year, month, day := date.Date()

	if moment == "sunrise" {
		return time.Date(year, month, day, 6, 42, 0, 0, date.Location()), nil
	}

	return time.Date(year, month, day, 21, 0, 0, 0, date.Location()), nil
}

// newTestManager opens a temporary store with a frozen clock.
func newTestManager(t *testing.T, now time.Time) (*Manager, *alarms.SQLiteRepository) {
	t.Helper()

	repo, err := alarms.Open(context.Background(), filepath.Join(t.TempDir(), "alarms.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return NewManager(repo, fixedResolver{}, func() time.Time { return now }), repo
}

// TestAdd_ClockDefaults picks today or tomorrow and derives recurrence from the days.
func TestAdd_ClockDefaults(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	later, err := m.Add(ctx, &AddRequest{Clock: "12:30"})
	require.NoError(t, err)
	require.Equal(t, 12, later.Hour)
	require.Equal(t, 30, later.Minute)
	require.Equal(t, alarm.Days{alarm.Wednesday}, later.Days)
	require.False(t, later.Recurrent)
	require.True(t, later.Enabled)

	past, err := m.Add(ctx, &AddRequest{Clock: "07:00"})
	require.NoError(t, err)
	require.Equal(t, alarm.Days{alarm.Thursday}, past.Days)

	weekdays, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "fri,mon,3"})
	require.NoError(t, err)
	require.Equal(t, alarm.Days{alarm.Monday, alarm.Thursday, alarm.Friday}, weekdays.Days)
	require.True(t, weekdays.Recurrent)

	once := false
	forced, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "sat,sun", Recurrent: &once, Temporary: true})
	require.NoError(t, err)
	require.False(t, forced.Recurrent)
	require.True(t, forced.Temporary)

	stored, err := repo.Get(ctx, weekdays.ID)
	require.NoError(t, err)
	require.Equal(t, weekdays.Days, stored.Days)
}

// TestAdd_Delay turns a delay into a one-shot fixed alarm, across midnight too.
func TestAdd_Delay(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, wednesday)

	a, err := m.Add(context.Background(), &AddRequest{In: 25 * time.Minute, OffsetMinutes: -5})
	require.NoError(t, err)
	require.Equal(t, 10, a.Hour)
	require.Equal(t, 25, a.Minute)
	require.Equal(t, alarm.Days{alarm.Wednesday}, a.Days)
	require.Equal(t, -5, a.OffsetMinutes)
	require.Empty(t, a.Moment)

	late, _ := newTestManager(t, time.Date(2024, time.June, 23, 23, 50, 0, 0, time.UTC))

	a, err = late.Add(context.Background(), &AddRequest{In: 25 * time.Minute})
	require.NoError(t, err)
	require.Equal(t, 0, a.Hour)
	require.Equal(t, 15, a.Minute)
	require.Equal(t, alarm.Days{alarm.Monday}, a.Days)
}

// TestAdd_Moment defaults to today while the moment is ahead, tomorrow otherwise.
func TestAdd_Moment(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, wednesday)
	ctx := context.Background()

	sunrise, err := m.Add(ctx, &AddRequest{Moment: "sunrise"})
	require.NoError(t, err)
	require.Equal(t, "sunrise", sunrise.Moment)
	require.Equal(t, alarm.Days{alarm.Thursday}, sunrise.Days)

	sunset, err := m.Add(ctx, &AddRequest{Moment: "sunset"})
	require.NoError(t, err)
	require.Equal(t, alarm.Days{alarm.Wednesday}, sunset.Days)

	everyDay, err := m.Add(ctx, &AddRequest{Moment: "dusk", Days: "0,1,2,3,4,5,6"})
	require.NoError(t, err)
	require.Equal(t, alarm.EveryDay(), everyDay.Days)
	require.True(t, everyDay.Recurrent)
}

// TestAdd_Rejects covers missing, conflicting and malformed timing.
func TestAdd_Rejects(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	_, err := m.Add(ctx, &AddRequest{})
	require.ErrorIs(t, err, ErrNoTime)

	_, err = m.Add(ctx, &AddRequest{Clock: "07:00", Moment: "sunrise"})
	require.ErrorIs(t, err, ErrConflictingTime)

	_, err = m.Add(ctx, &AddRequest{Clock: "7h"})
	require.ErrorIs(t, err, ErrInvalidClock)

	_, err = m.Add(ctx, &AddRequest{Moment: "moonrise"})
	require.ErrorIs(t, err, alarm.ErrUnknownMoment)

	_, err = m.Add(ctx, &AddRequest{Clock: "07:00", Days: "mon,funday"})
	require.ErrorIs(t, err, alarm.ErrInvalidWeekday)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

// TestList_NextAndFilter computes next occurrences and narrows by day and state.
func TestList_NextAndFilter(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, wednesday)
	ctx := context.Background()

	morning, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "mon,thu"})
	require.NoError(t, err)

	evening, err := m.Add(ctx, &AddRequest{Moment: "sunset", Days: "wed", Disabled: true})
	require.NoError(t, err)

	entries, err := m.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = m.List(ctx, Filter{EnabledOnly: true})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, morning.ID, entries[0].Alarm.ID)
	require.NoError(t, entries[0].NextErr)
	require.Equal(t, time.Date(2024, time.June, 20, 7, 0, 0, 0, time.UTC), entries[0].Next)

	wed := alarm.Wednesday

	entries, err = m.List(ctx, Filter{Day: &wed})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, evening.ID, entries[0].Alarm.ID)

	entries, err = m.List(ctx, Filter{Moment: "sunrise"})
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestEdits applies snooze, offset, skip and enable switches by ID prefix.
func TestEdits(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	a, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "mon,thu"})
	require.NoError(t, err)

	prefix := a.ID.String()[:8]

	_, err = m.Snooze(ctx, prefix, 5)
	require.NoError(t, err)

	updated, err := m.Snooze(ctx, a.ID.String(), 10)
	require.NoError(t, err)
	require.Equal(t, 15, updated.SnoozeMinutes)

	updated, err = m.Offset(ctx, prefix, -20)
	require.NoError(t, err)
	require.Equal(t, -20, updated.OffsetMinutes)

	updated, err = m.Skip(ctx, prefix, true)
	require.NoError(t, err)
	require.True(t, updated.Skip)

	updated, err = m.SetEnabled(ctx, prefix, false)
	require.NoError(t, err)
	require.False(t, updated.Enabled)

	stored, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 15, stored.SnoozeMinutes)
	require.Equal(t, -20, stored.OffsetMinutes)
	require.True(t, stored.Skip)
	require.False(t, stored.Enabled)

	removed, err := m.Remove(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, a.ID, removed.ID)

	_, err = m.Skip(ctx, prefix, false)
	require.ErrorIs(t, err, alarms.ErrNotFound)
}

// TestModify rewrites timing, days and arguments in one update.
func TestModify(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	a, err := m.Add(ctx, &AddRequest{
		Clock:    "07:00",
		Days:     "mon,thu",
		FadeArgs: alarm.Args{"curve": "linear", "duration": "600"},
	})
	require.NoError(t, err)
	require.True(t, a.Recurrent)

	moment, days := "sunrise", "sat"

	updated, err := m.Modify(ctx, a.ID.String()[:8], &ModifyRequest{
		Moment:   &moment,
		Days:     &days,
		FadeArgs: alarm.Args{"duration": "900"},
	})
	require.NoError(t, err)
	require.Equal(t, "sunrise", updated.Moment)
	require.Equal(t, alarm.Days{alarm.Saturday}, updated.Days)
	require.False(t, updated.Recurrent)
	require.Equal(t, alarm.Args{"curve": "linear", "duration": "900"}, updated.FadeArgs)

	clock, days, recurrent, temporary := "06:15", "sat,sun", false, true

	updated, err = m.Modify(ctx, a.ID.String(), &ModifyRequest{
		Clock:              &clock,
		Days:               &days,
		Recurrent:          &recurrent,
		Temporary:          &temporary,
		EraseFade:          true,
		RecommendationArgs: alarm.Args{"genre": "ambient"},
	})
	require.NoError(t, err)

	stored, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Moment)
	require.Equal(t, 6, stored.Hour)
	require.Equal(t, 15, stored.Minute)
	require.Equal(t, alarm.Days{alarm.Saturday, alarm.Sunday}, stored.Days)
	require.False(t, stored.Recurrent)
	require.True(t, stored.Temporary)
	require.Empty(t, stored.FadeArgs)
	require.Equal(t, alarm.Args{"genre": "ambient"}, stored.RecommendationArgs)
	require.Equal(t, updated.Days, stored.Days)

	enabled := false

	updated, err = m.Modify(ctx, a.ID.String(), &ModifyRequest{Enabled: &enabled, EraseRecommendations: true})
	require.NoError(t, err)
	require.False(t, updated.Enabled)
	require.Empty(t, updated.RecommendationArgs)
	require.Equal(t, alarm.Days{alarm.Saturday, alarm.Sunday}, updated.Days)
}

// TestModify_Rejects leaves the alarm untouched on invalid requests.
func TestModify_Rejects(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	a, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "mon"})
	require.NoError(t, err)

	ref := a.ID.String()
	clock, badClock, moment, badMoment, empty, badDays := "08:00", "25:00", "sunset", "moonrise", "", "someday"

	_, err = m.Modify(ctx, ref, &ModifyRequest{})
	require.ErrorIs(t, err, ErrNothingToModify)

	_, err = m.Modify(ctx, ref, &ModifyRequest{Clock: &clock, Moment: &moment})
	require.ErrorIs(t, err, ErrConflictingTime)

	_, err = m.Modify(ctx, ref, &ModifyRequest{Clock: &badClock})
	require.ErrorIs(t, err, ErrInvalidClock)

	_, err = m.Modify(ctx, ref, &ModifyRequest{Moment: &badMoment})
	require.Error(t, err)

	_, err = m.Modify(ctx, ref, &ModifyRequest{Moment: &empty})
	require.ErrorIs(t, err, ErrNoTime)

	_, err = m.Modify(ctx, ref, &ModifyRequest{Days: &badDays})
	require.Error(t, err)

	_, err = m.Modify(ctx, uuid.NewString(), &ModifyRequest{Clock: &clock})
	require.ErrorIs(t, err, alarms.ErrNotFound)

	stored, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 7, stored.Hour)
	require.Equal(t, alarm.Days{alarm.Monday}, stored.Days)
}

// TestClear removes disabled alarms first, then everything.
func TestClear(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	kept, err := m.Add(ctx, &AddRequest{Clock: "07:00"})
	require.NoError(t, err)

	_, err = m.Add(ctx, &AddRequest{Clock: "08:00", Disabled: true})
	require.NoError(t, err)

	_, err = m.Add(ctx, &AddRequest{Moment: "sunset", Disabled: true})
	require.NoError(t, err)

	removed, err := m.Clear(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, kept.ID, list[0].ID)

	removed, err = m.Clear(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	removed, err = m.Clear(ctx, false)
	require.NoError(t, err)
	require.Zero(t, removed)
}

// TestList_Filters narrows by hour, timing kind, recurrence and temporary flag.
func TestList_Filters(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, wednesday)
	ctx := context.Background()

	seven, err := m.Add(ctx, &AddRequest{Clock: "07:00", Days: "mon,thu"})
	require.NoError(t, err)

	eight, err := m.Add(ctx, &AddRequest{Clock: "08:00", Temporary: true})
	require.NoError(t, err)

	sunrise, err := m.Add(ctx, &AddRequest{Moment: "sunrise"})
	require.NoError(t, err)

	ids := func(f Filter) []uuid.UUID {
		entries, err := m.List(ctx, f)
		require.NoError(t, err)

		out := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Alarm.ID)
		}

		return out
	}

	hour, zero := 7, 0
	yes, no := true, false

	require.Equal(t, []uuid.UUID{seven.ID}, ids(Filter{Hour: &hour}))
	// Moment alarms never match an hour.
	require.Empty(t, ids(Filter{Hour: &zero}))
	require.ElementsMatch(t, []uuid.UUID{seven.ID, eight.ID}, ids(Filter{ExactTime: &yes}))
	require.Equal(t, []uuid.UUID{sunrise.ID}, ids(Filter{ExactTime: &no}))
	require.Equal(t, []uuid.UUID{seven.ID}, ids(Filter{Recurrent: &yes}))
	require.ElementsMatch(t, []uuid.UUID{eight.ID, sunrise.ID}, ids(Filter{Recurrent: &no}))
	require.Equal(t, []uuid.UUID{eight.ID}, ids(Filter{Temporary: &yes}))
	require.Equal(t, []uuid.UUID{eight.ID}, ids(Filter{Temporary: &yes, ExactTime: &yes, Recurrent: &no}))
}

// TestFind_Ambiguous refuses a prefix shared by several alarms.
func TestFind_Ambiguous(t *testing.T) {
	t.Parallel()

	m, repo := newTestManager(t, wednesday)
	ctx := context.Background()

	for _, id := range []string{
		"aaaaaaaa-0000-4000-8000-000000000001",
		"aaaaaaaa-0000-4000-8000-000000000002",
	} {
		a := alarm.New(7, 0, alarm.Days{alarm.Monday})
		a.ID = uuid.MustParse(id)
		require.NoError(t, repo.Save(ctx, a))
	}

	_, err := m.Find(ctx, "aaaaaaaa")
	require.ErrorIs(t, err, ErrAmbiguousID)

	a, err := m.Find(ctx, "aaaaaaaa-0000-4000-8000-000000000002")
	require.NoError(t, err)
	require.Equal(t, "aaaaaaaa-0000-4000-8000-000000000002", a.ID.String())

	_, err = m.Find(ctx, "bbbb")
	require.ErrorIs(t, err, alarms.ErrNotFound)
}

// TestParseArgs reads typed YAML scalars.
func TestParseArgs(t *testing.T) {
	t.Parallel()

	args, err := ParseArgs([]string{"duration=600", "curve=linear", "loud=true", "volume=0.5"})
	require.NoError(t, err)
	require.Equal(t, alarm.Args{"duration": 600, "curve": "linear", "loud": true, "volume": 0.5}, args)

	args, err = ParseArgs(nil)
	require.NoError(t, err)
	require.Nil(t, args)

	_, err = ParseArgs([]string{"duration"})
	require.ErrorIs(t, err, errMalformedArg)
}

// TestWriteTable renders one row per alarm with its flags.
func TestWriteTable(t *testing.T) {
	t.Parallel()

	a := alarm.New(7, 5, alarm.Days{alarm.Monday, alarm.Thursday})
	a.SnoozeMinutes = 10

	disabled := alarm.New(0, 0, alarm.Days{alarm.Wednesday})
	disabled.Moment = "sunset"
	disabled.Enabled = false

	var buffer bytes.Buffer

	require.NoError(t, WriteTable(&buffer, []Entry{
		{Alarm: a, Next: wednesday.Add(21*time.Hour + 5*time.Minute)},
		{Alarm: disabled},
	}, wednesday))

	out := buffer.String()
	require.Contains(t, out, "ID")
	require.Contains(t, out, "07:05")
	require.Contains(t, out, "mon,thu")
	require.Contains(t, out, "recurrent,snooze+10m")
	require.Contains(t, out, "Thu 2024-06-20 07:05")
	require.Contains(t, out, "from now")
	require.Contains(t, out, "sunset")
	require.Contains(t, out, "disabled")
}

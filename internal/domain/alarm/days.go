package alarm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Weekday is a day of the week where Monday is 0 and Sunday is 6.
type Weekday int

// Weekdays in scheduling order.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// daysInWeek is the size of the weekday cycle.
const daysInWeek = 7

var (
	// ErrNoDays is returned when an alarm would have an empty weekday set.
	ErrNoDays = errors.New("at least one weekday is required")
	// ErrInvalidWeekday is returned for values outside [0, 6] or unknown names.
	ErrInvalidWeekday = errors.New("invalid weekday")
	// ErrUnsortedDays is returned when a Days value breaks the ascending invariant.
	ErrUnsortedDays = errors.New("weekdays must be sorted ascending without duplicates")
)

//nolint:gochecknoglobals // Read-only lookup table.
var weekdayNames = [daysInWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayOf returns the Monday-based weekday of t in t's location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + daysInWeek - 1) % daysInWeek)
}

// Valid reports whether d lies within [Monday, Sunday].
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the lowercase English day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return "weekday(" + strconv.Itoa(int(d)) + ")"
	}

	return weekdayNames[d]
}

// ParseWeekday accepts a number 0..6, a full day name or its three letter prefix.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(s); err == nil {
		if !Weekday(n).Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, n)
		}

		return Weekday(n), nil
	}

	if len(s) >= 3 {
		for i, name := range weekdayNames {
			if strings.HasPrefix(name, s) {
				return Weekday(i), nil
			}
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// Days is a non-empty ascending sequence of distinct weekdays.
// Build it with NewDays or ParseDays so the ordering invariant holds.
type Days []Weekday

// NewDays validates, sorts and deduplicates the given weekdays.
func NewDays(days ...Weekday) (Days, error) {
	if len(days) == 0 {
		return nil, ErrNoDays
	}

	result := make(Days, 0, len(days))

	for _, d := range days {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}

		result = append(result, d)
	}

	slices.Sort(result)

	return slices.Compact(result), nil
}

// ParseDays parses a comma separated list of weekday numbers or names.
func ParseDays(s string) (Days, error) {
	var days []Weekday

	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}

		d, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}

		days = append(days, d)
	}

	return NewDays(days...)
}

// EveryDay returns all seven weekdays.
func EveryDay() Days {
	return Days{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Validate checks the non-empty and strictly ascending invariants.
func (ds Days) Validate() error {
	if len(ds) == 0 {
		return ErrNoDays
	}

	for i, d := range ds {
		if !d.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}

		if i > 0 && ds[i-1] >= d {
			return ErrUnsortedDays
		}
	}

	return nil
}

// Contains reports whether d is part of the set.
func (ds Days) Contains(d Weekday) bool {
	_, found := slices.BinarySearch(ds, d)

	return found
}

// FirstFrom returns the first day >= from (or > from when strict),
// wrapping around to the first day of the week when none qualifies.
func (ds Days) FirstFrom(from Weekday, strict bool) Weekday {
	for _, d := range ds {
		if d > from || (!strict && d == from) {
			return d
		}
	}

	return ds[0]
}

// LastBefore returns the last day < before (or <= before when inclusive),
// wrapping around to the last day of the week when none qualifies.
func (ds Days) LastBefore(before Weekday, inclusive bool) Weekday {
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i] < before || (inclusive && ds[i] == before) {
			return ds[i]
		}
	}

	return ds[len(ds)-1]
}

// String renders the set as comma separated short names, e.g. "mon,wed,fri".
func (ds Days) String() string {
	names := make([]string, 0, len(ds))
	for _, d := range ds {
		names = append(names, d.String()[:3])
	}

	return strings.Join(names, ",")
}

// Clone returns an independent copy.
func (ds Days) Clone() Days {
	return slices.Clone(ds)
}

package astro

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/oshokin/gradual/internal/config"
)

// span names the two sun times that open and close an interval event.
type span struct {
	// from opens the interval.
	from suncalc.DayTimeName
	// to closes the interval.
	to suncalc.DayTimeName
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	pointEvents = map[string]suncalc.DayTimeName{
		"dawn":       suncalc.Dawn,
		"sunrise":    suncalc.Sunrise,
		"solar_noon": suncalc.SolarNoon,
		"sunset":     suncalc.Sunset,
		"dusk":       suncalc.Dusk,
	}

	// Morning spans chain into each other: blue hour, twilight, golden hour.
	spanEvents = map[string]span{
		"blue_hour":   {from: suncalc.NauticalDawn, to: suncalc.Dawn},
		"twilight":    {from: suncalc.Dawn, to: suncalc.Sunrise},
		"golden_hour": {from: suncalc.Sunrise, to: suncalc.GoldenHourEnd},
	}
)

// Solar resolves sun events with suncalc.
type Solar struct {
	// location is the observer; nil makes every lookup fail with ErrLocationUnresolved.
	location *config.Location
	// zone is where returned instants are expressed.
	zone *time.Location
}

// NewSolar builds a provider for the given observer. A nil location is
// accepted and reported as ErrLocationUnresolved on every lookup.
func NewSolar(location *config.Location) (*Solar, error) {
	zone, err := location.Zone()
	if err != nil {
		return nil, err
	}

	return &Solar{
		location: location,
		zone:     zone,
	}, nil
}

// Event implements Provider.
func (s *Solar) Event(_ context.Context, name string, date time.Time) (Event, error) {
	if s.location == nil {
		return Event{}, ErrLocationUnresolved
	}

	if key, ok := pointEvents[name]; ok {
		times, noon := s.times(date)

		at, err := pick(times, key, noon, name)
		if err != nil {
			return Event{}, err
		}

		return Event{Start: at}, nil
	}

	sp, ok := spanEvents[name]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrEventUnknown, name)
	}

	times, noon := s.times(date)

	start, err := pick(times, sp.from, noon, name)
	if err != nil {
		return Event{}, err
	}

	end, err := pick(times, sp.to, noon, name)
	if err != nil {
		return Event{}, err
	}

	return Event{Start: start, End: end}, nil
}

// times computes every sun time of the calendar day around its local noon.
func (s *Solar) times(date time.Time) (map[suncalc.DayTimeName]suncalc.DayTime, time.Time) {
	year, month, day := date.Date()
	noon := time.Date(year, month, day, 12, 0, 0, 0, s.zone)

	return suncalc.GetTimesWithObserver(noon, suncalc.Observer{
		Latitude:  s.location.Latitude,
		Longitude: s.location.Longitude,
		Height:    math.Max(s.location.Elevation, 0),
		Location:  s.zone,
	}), noon
}

// pick extracts one sun time. The sun never reaching the elevation shows up
// as a zero or out-of-range instant.
func pick(
	times map[suncalc.DayTimeName]suncalc.DayTime,
	key suncalc.DayTimeName,
	noon time.Time,
	name string,
) (time.Time, error) {
	value := times[key].Value
	if value.IsZero() || value.Sub(noon).Abs() > 24*time.Hour {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoEvent, name)
	}

	return value.Round(time.Second).In(noon.Location()), nil
}

// Package astro resolves named celestial events (sunrise, dusk, golden hour,
// ...) to instants for a location and date.
//
// Point events come back as a single instant; span events such as the golden
// hour come back as an interval. Solar maps event names onto the sun times
// computed by suncalc for the configured coordinates.
package astro

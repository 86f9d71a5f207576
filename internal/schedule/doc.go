// Package schedule computes when alarms occur.
//
// Resolver turns a moment name and a date into a clock time through an
// astro.Provider. Calculator derives the previous and next occurrence of an
// alarm relative to "now" from its weekday set, clock time or moment, and
// its snooze/offset state. Calculator never mutates alarms except in Decay,
// the explicit once-per-tick step that forgets stale Last* adjustments.
package schedule

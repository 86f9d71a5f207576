// Package alarm contains the core domain types of the scheduler.
//
// It defines Alarm (one scheduled playback with its snooze/offset state),
// Weekday and Days (the sorted, duplicate-free weekday set the scheduling
// math relies on), moment names and the opaque Args bags forwarded to the
// player. Clone helpers avoid leaking internal references.
package alarm

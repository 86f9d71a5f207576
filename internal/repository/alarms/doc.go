// Package alarms implements persistence for alarm records.
//
// SQLiteRepository keeps every alarm as one row of an SQLite database opened
// through the pure Go modernc.org/sqlite driver. Update wraps a
// read-modify-write cycle in a single immediate transaction so concurrent
// writers (the scheduler daemon and the CLI) never lose each other's edits.
package alarms

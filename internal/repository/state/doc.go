// Package state persists the scheduler pause switch.
//
// The FileRepository stores and loads the switch as JSON on disk so a
// paused daemon stays paused across restarts. It exposes a Repository
// interface that the scheduler service depends on.
package state

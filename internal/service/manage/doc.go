// Package manage edits the alarm store for the gradual CLI.
//
// It creates alarms with the same defaults the daemon expects (recurrence
// follows the number of days, a one-shot alarm lands on the next matching
// day), lists them with their computed next occurrence and applies snooze,
// offset, skip and enable switches through atomic store updates.
package manage

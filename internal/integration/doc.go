// Package integration runs the scheduler daemon end to end against a
// temporary database and drives it through the control client.
package integration

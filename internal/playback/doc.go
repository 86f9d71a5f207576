// Package playback defines the contract with the music player and a
// command-driven implementation of it.
//
// The player itself is an external program: the play command receives the
// merged Request as JSON on stdin and the status command prints a Status as
// JSON on stdout. Without configured commands playback requests are only
// logged.
package playback

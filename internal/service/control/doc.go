// Package control implements the client side of gradual pause, resume and state.
//
// The command connects to the scheduler daemon, identifies the local user
// for the audit trail and prints the resulting switch position.
package control

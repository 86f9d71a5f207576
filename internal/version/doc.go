// Package version exposes build metadata for gradual-server and gradual.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at build time.
package version

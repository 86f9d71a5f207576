// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the scheduler's control service with call
// timeouts, and detects the current system actor (hostname/username) that is
// sent along with every control command for audit purposes.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

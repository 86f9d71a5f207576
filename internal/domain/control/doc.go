// Package control contains the domain model of the scheduler's pause switch.
//
// State tells whether the scheduler is running, when that last changed and
// which Actor changed it. These types are transport-agnostic; the gRPC layer
// converts them to and from wire messages.
package control

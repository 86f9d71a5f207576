// Package control implements the gRPC transport for the scheduler's pause switch.
//
// The service gradual.v1.ControlService has three unary methods, Pause,
// Resume and GetState, all taking google.protobuf.Empty and answering with a
// google.protobuf.Struct describing the switch. The caller's identity travels
// as request metadata and is required for the mutating methods.
package control

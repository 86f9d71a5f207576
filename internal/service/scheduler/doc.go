// Package scheduler runs the alarm daemon.
//
// Loop wakes up on a fixed cadence, picks the enabled alarm that fires
// soonest, asks the Evaluator whether it should play right now and lets the
// Lifecycle apply the fire: playback, one-shot and temporary bookkeeping,
// snooze/offset consumption and notifications. A Gate pauses the whole loop
// and is flipped remotely through the gRPC control service started by Run.
package scheduler

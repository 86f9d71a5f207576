package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/playback"
	"github.com/oshokin/gradual/internal/repository/alarms"
)

// Loop is the single cooperative scheduling loop.
type Loop struct {
	// store lists and updates alarms.
	store Store
	// calculator computes occurrences and decays stale adjustments.
	calculator Calculator
	// evaluator accepts or rejects the candidate.
	evaluator *Evaluator
	// lifecycle applies an accepted fire.
	lifecycle *Lifecycle
	// gate pauses the loop.
	gate *Gate
	// interval is the tick cadence.
	interval time.Duration
	// now returns the current time in the schedule's location.
	now func() time.Time
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInterval sets the tick cadence.
func WithInterval(interval time.Duration) LoopOption {
	return func(l *Loop) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

// WithClock sets the time source, typically time.Now in the configured zone.
func WithClock(now func() time.Time) LoopOption {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoop wires the loop collaborators.
func NewLoop(
	store Store,
	calculator Calculator,
	evaluator *Evaluator,
	lifecycle *Lifecycle,
	gate *Gate,
	opts ...LoopOption,
) *Loop {
	l := &Loop{
		store:      store,
		calculator: calculator,
		evaluator:  evaluator,
		lifecycle:  lifecycle,
		gate:       gate,
		interval:   config.DefaultPollInterval,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run ticks immediately and then on every interval until ctx is done.
// Ticks never overlap: a tick still running when the next one is due makes
// the next one skip.
func (l *Loop) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "loop")
	cronLogger := logger.NewCronLogger(ctx)

	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := c.Schedule(cron.Every(l.interval), cron.FuncJob(func() {
		l.runTick(ctx)
	}))

	logger.InfoKV(ctx, "Scheduler loop started", "interval", l.interval.String(), "job_id", job)

	l.runTick(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	logger.Info(ctx, "Scheduler loop stopped")

	return nil
}

func (l *Loop) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if err := l.Tick(ctx, l.now()); err != nil {
		logger.ErrorKV(ctx, "Tick failed", "error", err)
	}
}

// Tick executes one loop iteration at now. Storage failures abort the tick
// and are returned; alarms whose moment cannot be resolved are skipped.
func (l *Loop) Tick(ctx context.Context, now time.Time) error {
	if l.gate.Paused() {
		logger.Debug(ctx, "Scheduler paused, skipping tick")

		return nil
	}

	enabled, err := l.store.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled alarms: %w", err)
	}

	if err = l.decay(ctx, enabled, now); err != nil {
		return err
	}

	candidate := l.pickCandidate(ctx, enabled, now)
	if candidate == nil {
		return nil
	}

	play, err := l.evaluator.ShouldPlay(ctx, candidate, now)
	if err != nil {
		logger.WarnKV(ctx, "Skipping alarm this tick", "alarm_id", candidate.ID, "error", err)

		return nil
	}

	if !play {
		return nil
	}

	logger.InfoKV(ctx, "Alarm triggered", "alarm_id", candidate.ID)

	if err = l.lifecycle.OnFire(ctx, candidate); err != nil {
		if errors.Is(err, playback.ErrPlayback) {
			logger.ErrorKV(ctx, "Playback failed, fire consumed", "alarm_id", candidate.ID, "error", err)

			return nil
		}

		return fmt.Errorf("fire alarm %s: %w", candidate.ID, err)
	}

	return nil
}

// decay clears stale Last* adjustments and persists the changed alarms.
func (l *Loop) decay(ctx context.Context, enabled []*alarm.Alarm, now time.Time) error {
	for _, a := range enabled {
		changed, err := l.calculator.Decay(ctx, a, now)
		if err != nil {
			logger.WarnKV(ctx, "Decay check failed", "alarm_id", a.ID, "error", err)

			continue
		}

		if !changed {
			continue
		}

		_, err = l.store.Update(ctx, a.ID, func(stored *alarm.Alarm) error {
			stored.ClearLastAdjustments()

			return nil
		})
		if err != nil {
			if errors.Is(err, alarms.ErrNotFound) {
				continue
			}

			return fmt.Errorf("persist decayed alarm %s: %w", a.ID, err)
		}

		logger.DebugKV(ctx, "Stale adjustments cleared", "alarm_id", a.ID)
	}

	return nil
}

// pickCandidate returns the alarm with the earliest next occurrence.
// Ties keep the storage order.
func (l *Loop) pickCandidate(ctx context.Context, enabled []*alarm.Alarm, now time.Time) *alarm.Alarm {
	var (
		candidate *alarm.Alarm
		earliest  time.Time
	)

	for _, a := range enabled {
		next, err := l.calculator.NextTime(ctx, a, now)
		if err != nil {
			logger.WarnKV(ctx, "Skipping alarm this tick", "alarm_id", a.ID, "error", err)

			continue
		}

		if candidate == nil || next.Before(earliest) {
			candidate = a
			earliest = next
		}
	}

	return candidate
}

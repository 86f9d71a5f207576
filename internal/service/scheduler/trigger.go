package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/playback"
)

// Calculator computes alarm occurrences.
type Calculator interface {
	NextTime(ctx context.Context, a *alarm.Alarm, now time.Time) (time.Time, error)
	Decay(ctx context.Context, a *alarm.Alarm, now time.Time) (bool, error)
}

// Evaluator decides whether an alarm must play at the current tick.
type Evaluator struct {
	// calculator provides the next occurrence.
	calculator Calculator
	// player is asked whether something is already playing.
	player playback.Controller
	// timeout bounds the status call; zero means no deadline.
	timeout time.Duration
}

// NewEvaluator creates an evaluator.
func NewEvaluator(calculator Calculator, player playback.Controller, timeout time.Duration) *Evaluator {
	return &Evaluator{
		calculator: calculator,
		player:     player,
		timeout:    timeout,
	}
}

// ShouldPlay reports whether a fires during now's minute on one of its days
// while the player is idle. An unknown player status counts as idle.
func (e *Evaluator) ShouldPlay(ctx context.Context, a *alarm.Alarm, now time.Time) (bool, error) {
	if !a.Enabled {
		return false, nil
	}

	next, err := e.calculator.NextTime(ctx, a, now)
	if err != nil {
		return false, fmt.Errorf("compute next time: %w", err)
	}

	if next.Hour() != now.Hour() || next.Minute() != now.Minute() {
		return false, nil
	}

	if !a.Days.Contains(alarm.WeekdayOf(now)) {
		return false, nil
	}

	callCtx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	status, err := e.player.CurrentPlayback(callCtx)
	if err != nil {
		logger.WarnKV(ctx, "Playback status unknown", "alarm_id", a.ID, "error", err)

		return true, nil
	}

	if status != nil && status.IsPlaying {
		logger.InfoKV(ctx, "Player is busy, not triggering", "alarm_id", a.ID)

		return false, nil
	}

	return true, nil
}

// withTimeout returns a context with timeout if configured,
// otherwise a cancellable child context without a deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/playback"
	"github.com/oshokin/gradual/internal/repository/alarms"
)

// Store is the part of the alarm repository the daemon needs.
type Store interface {
	ListEnabled(ctx context.Context) ([]*alarm.Alarm, error)
	Update(ctx context.Context, id uuid.UUID, fn alarms.MutateFunc) (*alarm.Alarm, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier is told about every alarm that played.
type Notifier interface {
	AlarmPlayed(ctx context.Context, a *alarm.Alarm)
}

// Defaults are merged under every alarm's own playback arguments.
type Defaults struct {
	// Device is the configured output device.
	Device string
	// Fade holds the configured fade arguments.
	Fade map[string]any
	// Recommendations holds the configured recommendation arguments.
	Recommendations map[string]any
}

// Lifecycle applies the consequences of an accepted trigger.
type Lifecycle struct {
	// store persists the bookkeeping.
	store Store
	// player starts playback.
	player playback.Controller
	// notifier may be nil.
	notifier Notifier
	// defaults are merged into each playback request.
	defaults Defaults
	// timeout bounds the playback call; zero means no deadline.
	timeout time.Duration
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(
	store Store,
	player playback.Controller,
	notifier Notifier,
	defaults Defaults,
	timeout time.Duration,
) *Lifecycle {
	return &Lifecycle{
		store:    store,
		player:   player,
		notifier: notifier,
		defaults: defaults,
		timeout:  timeout,
	}
}

// OnFire consumes one fire of a. Temporary alarms are deleted, and a pending
// skip is honoured for them too. Other alarms get their one-shot, snooze,
// offset and skip bookkeeping committed atomically before playback, so a
// playback failure still counts as a consumed fire. a is refreshed with the
// stored state.
func (l *Lifecycle) OnFire(ctx context.Context, a *alarm.Alarm) error {
	ctx = logger.WithKV(ctx, "alarm_id", a.ID)

	if a.Temporary {
		return l.fireTemporary(ctx, a)
	}

	var skipped bool

	updated, err := l.store.Update(ctx, a.ID, func(stored *alarm.Alarm) error {
		skipped = stored.ConsumeFire()

		return nil
	})
	if err != nil {
		if errors.Is(err, alarms.ErrNotFound) {
			logger.Info(ctx, "Alarm removed before firing, nothing to play")

			return nil
		}

		return fmt.Errorf("consume fire: %w", err)
	}

	*a = *updated

	if skipped {
		logger.Info(ctx, "Alarm skipped once")

		return nil
	}

	return l.play(ctx, a)
}

func (l *Lifecycle) fireTemporary(ctx context.Context, a *alarm.Alarm) error {
	if err := l.store.Delete(ctx, a.ID); err != nil {
		if errors.Is(err, alarms.ErrNotFound) {
			logger.Info(ctx, "Temporary alarm removed before firing, nothing to play")

			return nil
		}

		return fmt.Errorf("delete temporary alarm: %w", err)
	}

	logger.Info(ctx, "Temporary alarm deleted")

	if a.Skip {
		logger.Info(ctx, "Temporary alarm skipped")

		return nil
	}

	return l.play(ctx, a)
}

func (l *Lifecycle) play(ctx context.Context, a *alarm.Alarm) error {
	request := playback.Request{
		AlarmID:            a.ID,
		Device:             l.defaults.Device,
		FadeArgs:           alarm.MergeArgs(l.defaults.Fade, a.FadeArgs),
		RecommendationArgs: alarm.MergeArgs(l.defaults.Recommendations, a.RecommendationArgs),
	}

	callCtx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.player.Play(callCtx, request); err != nil {
		return fmt.Errorf("play alarm: %w", err)
	}

	logger.Info(ctx, "Alarm played")

	if l.notifier != nil {
		l.notifier.AlarmPlayed(ctx, a)
	}

	return nil
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/gradual/internal/domain/control"
	"github.com/oshokin/gradual/internal/logger"
	"github.com/oshokin/gradual/internal/repository/state"
)

// Gate is the pause switch shared by the loop and the control service.
// The loop only reads the atomic flag; the audit fields are guarded by mu.
type Gate struct {
	// paused is read by every tick.
	paused atomic.Bool
	// mu protects changedAt and lastActor.
	mu sync.Mutex
	// changedAt is when the flag last flipped.
	changedAt time.Time
	// lastActor is who flipped it last.
	lastActor *control.Actor
	// now returns the current time.
	now func() time.Time
}

// NewGate returns a gate in the running position.
func NewGate() *Gate {
	return &Gate{
		now: time.Now,
	}
}

// Paused reports whether ticks must be skipped.
func (g *Gate) Paused() bool {
	return g.paused.Load()
}

// Pause stops future ticks from evaluating alarms. Pausing a paused gate
// keeps the previous audit record.
func (g *Gate) Pause(actor *control.Actor) *control.State {
	return g.set(true, actor)
}

// Resume lets future ticks evaluate alarms again.
func (g *Gate) Resume(actor *control.Actor) *control.State {
	return g.set(false, actor)
}

// State returns a snapshot of the switch.
func (g *Gate) State() *control.State {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

// Restore puts the switch back to a previously saved position.
func (g *Gate) Restore(saved *control.State) {
	if saved == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.paused.Store(!saved.Running)
	g.changedAt = saved.ChangedAt
	g.lastActor = saved.LastActor.Clone()
}

func (g *Gate) set(paused bool, actor *control.Actor) *control.State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused.Swap(paused) != paused {
		g.changedAt = g.now()
		g.lastActor = actor.Clone()
	}

	return g.snapshot()
}

func (g *Gate) snapshot() *control.State {
	return &control.State{
		Running:   !g.paused.Load(),
		ChangedAt: g.changedAt,
		LastActor: g.lastActor.Clone(),
	}
}

// persistedGate saves the switch after every Pause and Resume.
// Save failures are logged; the in-memory switch stays authoritative.
type persistedGate struct {
	*Gate

	// ctx carries the logger for save failures.
	ctx context.Context //nolint:containedctx // Gate methods have no context of their own.
	// store keeps the switch on disk.
	store state.Repository
}

// Pause implements the control service gate.
func (g *persistedGate) Pause(actor *control.Actor) *control.State {
	return g.save(g.Gate.Pause(actor))
}

// Resume implements the control service gate.
func (g *persistedGate) Resume(actor *control.Actor) *control.State {
	return g.save(g.Gate.Resume(actor))
}

func (g *persistedGate) save(current *control.State) *control.State {
	if err := g.store.Save(g.ctx, current); err != nil {
		logger.ErrorKV(g.ctx, "Failed to persist pause switch", "error", err)
	}

	return current
}

// restoreGate builds a gate from the saved switch, running when nothing was saved.
func restoreGate(ctx context.Context, store state.Repository) (*persistedGate, error) {
	gate := NewGate()

	saved, err := store.Load(ctx)

	switch {
	case errors.Is(err, state.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load pause switch: %w", err)
	default:
		gate.Restore(saved)
	}

	return &persistedGate{
		Gate:  gate,
		ctx:   ctx,
		store: store,
	}, nil
}

package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/gradual/internal/astro"
	"github.com/oshokin/gradual/internal/domain/alarm"
)

// Resolver translates moment names into clock times.
type Resolver struct {
	// provider computes the underlying astronomical events.
	provider astro.Provider
	// timeout bounds each provider call; zero means no deadline.
	timeout time.Duration
}

// NewResolver wires a provider with a per-call timeout.
func NewResolver(provider astro.Provider, timeout time.Duration) *Resolver {
	return &Resolver{
		provider: provider,
		timeout:  timeout,
	}
}

// Resolve returns the instant moment refers to on date's calendar day,
// expressed in date's location. Interval events resolve to their start,
// midpoint or end depending on the "_middle"/"_end" suffix.
func (r *Resolver) Resolve(ctx context.Context, moment string, date time.Time) (time.Time, error) {
	base, qualifier := alarm.SplitMoment(moment)

	callCtx, cancel := r.callContext(ctx)
	defer cancel()

	event, err := r.provider.Event(callCtx, base, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve moment %q: %w", moment, err)
	}

	at := event.Start

	if event.IsInterval() {
		switch qualifier {
		case alarm.QualifierMiddle:
			at = event.Start.Add(event.End.Sub(event.Start) / 2)
		case alarm.QualifierEnd:
			at = event.End
		case alarm.QualifierNone:
		}
	}

	return at.In(date.Location()), nil
}

// callContext returns a context with the resolver's timeout if configured,
// otherwise a cancellable child context without a deadline.
func (r *Resolver) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, r.timeout)
}

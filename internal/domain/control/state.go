package control

import (
	"time"
)

// Actor identifies who issued a control command.
type Actor struct {
	// Hostname is the machine the command came from.
	Hostname string
	// Username is the account that issued the command.
	Username string
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return ""
	}

	return a.Username + "@" + a.Hostname
}

// Clone returns a copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// State describes the pause switch.
type State struct {
	// Running is false while the scheduler is paused.
	Running bool
	// ChangedAt is when Running last changed; zero if it never did.
	ChangedAt time.Time
	// LastActor is who changed it last; nil if nobody did.
	LastActor *Actor
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	return &State{
		Running:   s.Running,
		ChangedAt: s.ChangedAt,
		LastActor: s.LastActor.Clone(),
	}
}

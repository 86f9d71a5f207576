package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestState_Clone verifies a deep copy is produced.
func TestState_Clone(t *testing.T) {
	t.Parallel()

	original := &State{
		Running:   true,
		ChangedAt: time.Unix(100, 0),
		LastActor: &Actor{Hostname: "kitchen-pi", Username: "o.shokin"},
	}

	cloned := original.Clone()
	require.Equal(t, original, cloned)

	cloned.LastActor.Username = "someone"
	require.Equal(t, "o.shokin", original.LastActor.Username)

	var empty *State
	require.Nil(t, empty.Clone())
}

// TestActor_String renders user@host and tolerates nil.
func TestActor_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "o.shokin@kitchen-pi", (&Actor{Hostname: "kitchen-pi", Username: "o.shokin"}).String())

	var nobody *Actor
	require.Empty(t, nobody.String())
	require.Nil(t, nobody.Clone())
}

package control

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/gradual/internal/domain/control"
)

const (
	runningField   = "running"
	changedAtField = "changed_at"
	actorField     = "last_actor"
	hostnameField  = "hostname"
	usernameField  = "username"
)

// ErrMalformedState is returned when a state message lacks required fields.
var ErrMalformedState = errors.New("malformed control state")

// ToProtoState converts a domain state into its wire form.
func ToProtoState(state *domain.State) *structpb.Struct {
	if state == nil {
		return &structpb.Struct{}
	}

	fields := map[string]*structpb.Value{
		runningField: structpb.NewBoolValue(state.Running),
	}

	if !state.ChangedAt.IsZero() {
		fields[changedAtField] = structpb.NewStringValue(state.ChangedAt.UTC().Format(time.RFC3339Nano))
	}

	if state.LastActor != nil {
		fields[actorField] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				hostnameField: structpb.NewStringValue(state.LastActor.Hostname),
				usernameField: structpb.NewStringValue(state.LastActor.Username),
			},
		})
	}

	return &structpb.Struct{
		Fields: fields,
	}
}

// FromProtoState converts a wire message into a domain state.
func FromProtoState(message *structpb.Struct) (*domain.State, error) {
	fields := message.GetFields()

	running, found := fields[runningField]
	if !found {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedState, runningField)
	}

	state := &domain.State{
		Running: running.GetBoolValue(),
	}

	if changedAt := fields[changedAtField].GetStringValue(); changedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, changedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedState, changedAtField, err)
		}

		state.ChangedAt = parsed
	}

	if actor := fields[actorField].GetStructValue(); actor != nil {
		actorFields := actor.GetFields()
		state.LastActor = &domain.Actor{
			Hostname: actorFields[hostnameField].GetStringValue(),
			Username: actorFields[usernameField].GetStringValue(),
		}
	}

	return state, nil
}

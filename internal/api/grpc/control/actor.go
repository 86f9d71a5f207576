package control

import (
	"context"

	"google.golang.org/grpc/metadata"

	domain "github.com/oshokin/gradual/internal/domain/control"
)

const (
	// hostnameMetadataKey carries the caller's hostname.
	hostnameMetadataKey = "x-gradual-actor-hostname"
	// usernameMetadataKey carries the caller's username.
	usernameMetadataKey = "x-gradual-actor-username"
)

// WithActor attaches actor to the outgoing request metadata.
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		hostnameMetadataKey, actor.Hostname,
		usernameMetadataKey, actor.Username)
}

// ActorFromContext reads the caller from incoming metadata.
// It returns nil when the caller did not identify itself.
func ActorFromContext(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	var (
		hostname = first(md.Get(hostnameMetadataKey))
		username = first(md.Get(usernameMetadataKey))
	)

	if hostname == "" && username == "" {
		return nil
	}

	return &domain.Actor{
		Hostname: hostname,
		Username: username,
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/gradual/internal/api/grpc/control"
	"github.com/oshokin/gradual/internal/config"
	"github.com/oshokin/gradual/internal/domain/control"
)

// Client wraps the gRPC ControlService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the scheduler daemon.
	conn *grpc.ClientConn
	// api is the ControlService client.
	api api.ControlServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial establishes a gRPC connection to the scheduler daemon.
// Note: this uses insecure transport credentials; the control address is
// expected to be loopback or a trusted network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial scheduler: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewControlServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// State retrieves the pause switch.
func (c *Client) State(ctx context.Context, actor *control.Actor) (*control.State, error) {
	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	response, err := c.api.GetState(callCtx, new(emptypb.Empty))

	return decodeState("get state", response, err)
}

// Pause stops the scheduler from evaluating alarms.
func (c *Client) Pause(ctx context.Context, actor *control.Actor) (*control.State, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	response, err := c.api.Pause(callCtx, new(emptypb.Empty))

	return decodeState("pause", response, err)
}

// Resume lets the scheduler evaluate alarms again.
func (c *Client) Resume(ctx context.Context, actor *control.Actor) (*control.State, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(api.WithActor(ctx, actor))
	defer cancel()

	response, err := c.api.Resume(callCtx, new(emptypb.Empty))

	return decodeState("resume", response, err)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func decodeState(action string, response *structpb.Struct, err error) (*control.State, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	state, err := api.FromProtoState(response)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	return state, nil
}

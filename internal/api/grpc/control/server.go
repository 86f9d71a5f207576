package control

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/gradual/internal/domain/control"
	"github.com/oshokin/gradual/internal/logger"
)

// Gate abstracts the pause switch the transport layer depends on.
type Gate interface {
	Pause(actor *domain.Actor) *domain.State
	Resume(actor *domain.Actor) *domain.State
	State() *domain.State
}

// Server implements ControlServiceServer.
type Server struct {
	// gate is the scheduler's pause switch.
	gate Gate
}

var _ ControlServiceServer = (*Server)(nil)

// NewServer wires the provided gate into a gRPC handler.
func NewServer(gate Gate) *Server {
	return &Server{
		gate: gate,
	}
}

// Pause stops the scheduler from evaluating alarms.
func (s *Server) Pause(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	state := s.gate.Pause(actor)

	logger.InfoKV(ctx, "Scheduler paused", "actor", actor.String())

	return ToProtoState(state), nil
}

// Resume lets the scheduler evaluate alarms again.
func (s *Server) Resume(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	state := s.gate.Resume(actor)

	logger.InfoKV(ctx, "Scheduler resumed", "actor", actor.String())

	return ToProtoState(state), nil
}

// GetState returns the pause switch.
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state := s.gate.State()

	logger.DebugKV(ctx, "Scheduler state requested", "running", state.Running, "actor", ActorFromContext(ctx).String())

	return ToProtoState(state), nil
}

package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gradual.v1.ControlService"

const (
	pauseMethod    = "/" + ServiceName + "/Pause"
	resumeMethod   = "/" + ServiceName + "/Resume"
	getStateMethod = "/" + ServiceName + "/GetState"
)

// ControlServiceServer is the server API of the control service.
type ControlServiceServer interface {
	Pause(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	Resume(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	GetState(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// ControlServiceClient is the client API of the control service.
type ControlServiceClient interface {
	Pause(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Resume(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// ControlServiceDesc describes the service for grpc.Server registration.
//
//nolint:gochecknoglobals // Service descriptors are package level by convention.
var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Pause", Handler: unaryHandler(pauseMethod, ControlServiceServer.Pause)},
		{MethodName: "Resume", Handler: unaryHandler(resumeMethod, ControlServiceServer.Resume)},
		{MethodName: "GetState", Handler: unaryHandler(getStateMethod, ControlServiceServer.GetState)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gradual/v1/control.proto",
}

// RegisterControlServiceServer registers srv on s.
func RegisterControlServiceServer(s grpc.ServiceRegistrar, srv ControlServiceServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

// unaryMethod is a ControlServiceServer method expression.
type unaryMethod func(ControlServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc.MethodHandler, honouring interceptors.
func unaryHandler(fullMethod string, method unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ControlServiceServer)

		if interceptor == nil {
			return method(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			request, _ := req.(*emptypb.Empty)

			return method(server, ctx, request)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// controlServiceClient invokes the control service over a connection.
type controlServiceClient struct {
	// cc is the underlying connection.
	cc grpc.ClientConnInterface
}

// NewControlServiceClient creates a client on cc.
func NewControlServiceClient(cc grpc.ClientConnInterface) ControlServiceClient {
	return &controlServiceClient{
		cc: cc,
	}
}

// Pause implements ControlServiceClient.
func (c *controlServiceClient) Pause(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, pauseMethod, in, opts...)
}

// Resume implements ControlServiceClient.
func (c *controlServiceClient) Resume(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, resumeMethod, in, opts...)
}

// GetState implements ControlServiceClient.
func (c *controlServiceClient) GetState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getStateMethod, in, opts...)
}

func (c *controlServiceClient) invoke(
	ctx context.Context,
	method string,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

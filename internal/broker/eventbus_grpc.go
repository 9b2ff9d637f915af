package broker

// This file hand-authors the protoc-gen-go-grpc-shaped plumbing for the
// EventBus service: ServiceDesc, the Unimplemented/client/server stream
// wrapper types, against a single wire type, *structpb.Struct, which is
// itself a ready-built proto.Message and needs no codegen of its own.

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventBusServer is the interface broker.Service implements.
type EventBusServer interface {
	Publish(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Subscribe(*structpb.Struct, EventBus_SubscribeServer) error
	DeclareExchange(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedEventBusServer may be embedded to satisfy forward compatibility.
type UnimplementedEventBusServer struct{}

func (UnimplementedEventBusServer) Publish(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Publish not implemented")
}

func (UnimplementedEventBusServer) Subscribe(*structpb.Struct, EventBus_SubscribeServer) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}

func (UnimplementedEventBusServer) DeclareExchange(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DeclareExchange not implemented")
}

// EventBus_SubscribeServer is the server-side stream handle for Subscribe.
type EventBus_SubscribeServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type eventBusSubscribeServer struct {
	grpc.ServerStream
}

func (s *eventBusSubscribeServer) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

// EventBus_SubscribeClient is the client-side stream handle for Subscribe.
type EventBus_SubscribeClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type eventBusSubscribeClient struct {
	grpc.ClientStream
}

func (c *eventBusSubscribeClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := c.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// EventBusClient is the client-side interface to the broker.
type EventBusClient interface {
	Publish(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (EventBus_SubscribeClient, error)
	DeclareExchange(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type eventBusClient struct {
	cc grpc.ClientConnInterface
}

// NewEventBusClient creates a client for the EventBus gRPC service.
func NewEventBusClient(cc grpc.ClientConnInterface) EventBusClient {
	return &eventBusClient{cc: cc}
}

func (c *eventBusClient) Publish(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/observatory.EventBus/Publish", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *eventBusClient) DeclareExchange(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/observatory.EventBus/DeclareExchange", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *eventBusClient) Subscribe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (EventBus_SubscribeClient, error) {
	stream, err := c.cc.NewStream(ctx, &EventBus_ServiceDesc.Streams[0], "/observatory.EventBus/Subscribe", opts...)
	if err != nil {
		return nil, err
	}
	x := &eventBusSubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func eventBusPublishHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EventBusServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/observatory.EventBus/Publish"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EventBusServer).Publish(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func eventBusDeclareExchangeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EventBusServer).DeclareExchange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/observatory.EventBus/DeclareExchange"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(EventBusServer).DeclareExchange(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func eventBusSubscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(EventBusServer).Subscribe(m, &eventBusSubscribeServer{stream})
}

// EventBus_ServiceDesc is the grpc.ServiceDesc for the EventBus service.
var EventBus_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "observatory.EventBus",
	HandlerType: (*EventBusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Publish", Handler: eventBusPublishHandler},
		{MethodName: "DeclareExchange", Handler: eventBusDeclareExchangeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: eventBusSubscribeHandler, ServerStreams: true},
	},
	Metadata: "observatory/eventbus.proto",
}

// RegisterEventBusServer registers an EventBusServer implementation with a gRPC server.
func RegisterEventBusServer(s grpc.ServiceRegistrar, srv EventBusServer) {
	s.RegisterService(&EventBus_ServiceDesc, srv)
}

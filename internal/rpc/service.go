// Package rpc serves the processor as the gRPC service
// nucmd.v1.CommandService and provides a client for it.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code:
//
//	Invoke:       {command, args{...} | params[...] | line} -> {id, invocation_id, output, found, error_code, error_message}
//	ListCommands: Empty -> {commands[...]}
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified service name
const ServiceName = "nucmd.v1.CommandService"

// Full method names
const (
	InvokeMethod       = "/" + ServiceName + "/Invoke"
	ListCommandsMethod = "/" + ServiceName + "/ListCommands"
)

// CommandServiceServer is implemented by Service
type CommandServiceServer interface {
	Invoke(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCommands(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterCommandServiceServer registers srv on s
func RegisterCommandServiceServer(s grpc.ServiceRegistrar, srv CommandServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func invokeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvokeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listCommandsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandServiceServer).ListCommands(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListCommandsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommandServiceServer).ListCommands(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes nucmd.v1.CommandService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
		{MethodName: "ListCommands", Handler: listCommandsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nucmd/v1/command.proto",
}

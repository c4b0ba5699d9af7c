package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Messages are
// google.protobuf.Struct holding the same JSON shapes as the HTTP API.
const ServiceName = "dropcalc.v1.DropCalc"

const (
	evaluateMethod      = "/" + ServiceName + "/Evaluate"
	evaluateBatchMethod = "/" + ServiceName + "/EvaluateBatch"
	simulateMethod      = "/" + ServiceName + "/Simulate"
)

// DropCalcServer is the server API for the DropCalc service.
type DropCalcServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EvaluateBatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(DropCalcServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method unaryMethod, fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(DropCalcServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(DropCalcServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes DropCalc for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DropCalcServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(DropCalcServer.Evaluate, evaluateMethod)},
		{MethodName: "EvaluateBatch", Handler: unaryHandler(DropCalcServer.EvaluateBatch, evaluateBatchMethod)},
		{MethodName: "Simulate", Handler: unaryHandler(DropCalcServer.Simulate, simulateMethod)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dropcalc/v1/dropcalc.proto",
}

func RegisterDropCalcServer(s grpc.ServiceRegistrar, srv DropCalcServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls DropCalc over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) EvaluateBatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateBatchMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, simulateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

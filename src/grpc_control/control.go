package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service marketmonitor.Control, built on protobuf well-known types:
//
//	rpc SetSymbols(google.protobuf.ListValue) returns (google.protobuf.Struct)
//	rpc ToggleSymbol(google.protobuf.StringValue) returns (google.protobuf.Struct)
//	rpc GetStatus(google.protobuf.Empty) returns (google.protobuf.Struct)
const (
	serviceName        = "marketmonitor.Control"
	methodSetSymbols   = "/" + serviceName + "/SetSymbols"
	methodToggleSymbol = "/" + serviceName + "/ToggleSymbol"
	methodGetStatus    = "/" + serviceName + "/GetStatus"
)

// ControlServer is the server API for the control service.
type ControlServer interface {
	SetSymbols(context.Context, *structpb.ListValue) (*structpb.Struct, error)
	ToggleSymbol(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

// RegisterControlServer attaches srv to a gRPC server.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&Control_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func _Control_SetSymbols_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).SetSymbols(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetSymbols}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).SetSymbols(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_ToggleSymbol_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ToggleSymbol(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodToggleSymbol}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).ToggleSymbol(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Control_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetStatus}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Control_ServiceDesc describes the control service for grpc.Server.
var Control_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetSymbols", Handler: _Control_SetSymbols_Handler},
		{MethodName: "ToggleSymbol", Handler: _Control_ToggleSymbol_Handler},
		{MethodName: "GetStatus", Handler: _Control_GetStatus_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "control.proto",
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// ControlClient calls the control service.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

// SetSymbols replaces the subscription set.
func (c *ControlClient) SetSymbols(ctx context.Context, symbols []string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	values := make([]interface{}, len(symbols))
	for i, s := range symbols {
		values[i] = s
	}
	in, err := structpb.NewList(values)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSetSymbols, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleSymbol adds or removes one symbol.
func (c *ControlClient) ToggleSymbol(ctx context.Context, symbol string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodToggleSymbol, wrapperspb.String(symbol), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStatus returns connection state, subscription set and display values.
func (c *ControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetStatus, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

package revocation

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RevocationServer is the server API for the Revocation gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain: KeyStatus maps a key id
// (StringValue) to a status string (StringValue, one of "active"/"revoked"/
// "unknown").
//
// Proto definition: revocation.proto.
type RevocationServer interface {
	KeyStatus(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// UnimplementedRevocationServer can be embedded to have forward compatible
// implementations.
type UnimplementedRevocationServer struct{}

func (UnimplementedRevocationServer) KeyStatus(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method KeyStatus not implemented")
}

// RegisterRevocationServer registers the Revocation service on a gRPC server.
func RegisterRevocationServer(s grpc.ServiceRegistrar, srv RevocationServer) {
	s.RegisterService(&Revocation_ServiceDesc, srv)
}

// RevocationClient is the client API for the Revocation gRPC service.
type RevocationClient interface {
	KeyStatus(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type revocationClient struct{ cc grpc.ClientConnInterface }

func NewRevocationClient(cc grpc.ClientConnInterface) RevocationClient {
	return &revocationClient{cc: cc}
}

func (c *revocationClient) KeyStatus(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/lukhas.seal.revocation.v1.Revocation/KeyStatus", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Revocation_KeyStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RevocationServer).KeyStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/lukhas.seal.revocation.v1.Revocation/KeyStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RevocationServer).KeyStatus(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Revocation_ServiceDesc is the grpc.ServiceDesc for the Revocation service.
var Revocation_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lukhas.seal.revocation.v1.Revocation",
	HandlerType: (*RevocationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "KeyStatus", Handler: _Revocation_KeyStatus_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "revocation.proto",
}

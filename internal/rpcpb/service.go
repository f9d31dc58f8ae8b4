package rpcpb

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC service the peer coordinator dials for both
// EC_AGGREGATE and EC_REPLICATE.
const ServiceName = "ecagg.PeerAggregate"

// PeerAggregateServer is implemented by a storage target that can receive
// parity-write and hole-fill RPCs from a peer running aggregation.
type PeerAggregateServer interface {
	Aggregate(ctx context.Context, req *AggregateRequest) (*AggregateReply, error)
	Replicate(ctx context.Context, req *ReplicateRequest) (*ReplicateReply, error)
}

func _PeerAggregate_Aggregate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AggregateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerAggregateServer).Aggregate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Aggregate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PeerAggregateServer).Aggregate(ctx, req.(*AggregateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PeerAggregate_Replicate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReplicateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerAggregateServer).Replicate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName + "/Replicate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PeerAggregateServer).Replicate(ctx, req.(*ReplicateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// PeerAggregateServiceDesc is the hand-registered service descriptor (no
// protoc-gen-go-grpc step runs in this repo; it is wired the same way
// generated code wires a ServiceDesc).
var PeerAggregateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PeerAggregateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Aggregate", Handler: _PeerAggregate_Aggregate_Handler},
		{MethodName: "Replicate", Handler: _PeerAggregate_Replicate_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ecagg/rpcpb/ecagg.proto",
}

// RegisterPeerAggregateServer registers srv against a gRPC server.
func RegisterPeerAggregateServer(s grpc.ServiceRegistrar, srv PeerAggregateServer) {
	s.RegisterService(&PeerAggregateServiceDesc, srv)
}

// PeerAggregateClient is the client stub the peer coordinator uses to
// reach another storage target's PeerAggregateServer.
type PeerAggregateClient interface {
	Aggregate(ctx context.Context, in *AggregateRequest, opts ...grpc.CallOption) (*AggregateReply, error)
	Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (*ReplicateReply, error)
}

type peerAggregateClient struct {
	cc grpc.ClientConnInterface
}

// NewPeerAggregateClient wraps a client connection as a PeerAggregateClient.
func NewPeerAggregateClient(cc grpc.ClientConnInterface) PeerAggregateClient {
	return &peerAggregateClient{cc: cc}
}

func (c *peerAggregateClient) Aggregate(ctx context.Context, in *AggregateRequest, opts ...grpc.CallOption) (*AggregateReply, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	out := new(AggregateReply)
	if err := c.cc.Invoke(ctx, ServiceName+"/Aggregate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerAggregateClient) Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (*ReplicateReply, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	out := new(ReplicateReply)
	if err := c.cc.Invoke(ctx, ServiceName+"/Replicate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

package revocation

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"lukhas.dev/seal/seal"
)

// GRPCClient implements seal.RevocationChecker over the Revocation gRPC
// service.
type GRPCClient struct {
	cc     *grpc.ClientConn
	client RevocationClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

// DialOptions configures Dial.
type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

// Dial connects to a revocation service at target.
func Dial(target string, opts DialOptions) (*GRPCClient, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{cc: cc, client: NewRevocationClient(cc)}, nil
}

// Close tears down the underlying connection.
func (c *GRPCClient) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// KeyStatus implements seal.RevocationChecker.
func (c *GRPCClient) KeyStatus(ctx context.Context, keyID string) (seal.RevocationStatus, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	reply, err := c.client.KeyStatus(ctx, wrapperspb.String(keyID))
	if err != nil {
		return seal.StatusUnknown, err
	}
	return parseStatus(reply.GetValue()), nil
}

package revocation

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"lukhas.dev/seal/seal"
)

// ListServer exposes an in-memory revocation list over the Revocation gRPC
// service. Keys not present on the list report "active"; revoked keys report
// "revoked". It backs the revocation daemon and in-process tests.
type ListServer struct {
	UnimplementedRevocationServer

	mu      sync.RWMutex
	revoked map[string]bool
}

// NewListServer builds a ListServer with the given initially revoked key ids.
func NewListServer(revoked ...string) *ListServer {
	m := make(map[string]bool, len(revoked))
	for _, kid := range revoked {
		m[kid] = true
	}
	return &ListServer{revoked: m}
}

// Revoke adds a key id to the list.
func (s *ListServer) Revoke(keyID string) {
	s.mu.Lock()
	s.revoked[keyID] = true
	s.mu.Unlock()
}

// KeyStatus implements RevocationServer.
func (s *ListServer) KeyStatus(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	kid := in.GetValue()
	if kid == "" {
		return nil, status.Error(codes.InvalidArgument, "missing key id")
	}
	s.mu.RLock()
	revoked := s.revoked[kid]
	s.mu.RUnlock()
	if revoked {
		return wrapperspb.String(string(seal.StatusRevoked)), nil
	}
	return wrapperspb.String(string(seal.StatusActive)), nil
}

package revocation

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"lukhas.dev/seal/seal"
)

func bufDial(t *testing.T, srv RevocationServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	RegisterRevocationServer(server, srv)
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestListServer_KeyStatus(t *testing.T) {
	srv := NewListServer("bad-kid")
	conn := bufDial(t, srv)
	client := NewRevocationClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := client.KeyStatus(ctx, wrapperspb.String("good-kid"))
	if err != nil {
		t.Fatalf("KeyStatus: %v", err)
	}
	if reply.GetValue() != string(seal.StatusActive) {
		t.Fatalf("status = %q, want active", reply.GetValue())
	}

	reply, err = client.KeyStatus(ctx, wrapperspb.String("bad-kid"))
	if err != nil {
		t.Fatalf("KeyStatus: %v", err)
	}
	if reply.GetValue() != string(seal.StatusRevoked) {
		t.Fatalf("status = %q, want revoked", reply.GetValue())
	}

	if _, err := client.KeyStatus(ctx, wrapperspb.String("")); err == nil {
		t.Fatalf("expected InvalidArgument for empty key id")
	}
}

func TestListServer_RevokeAfterStart(t *testing.T) {
	srv := NewListServer()
	conn := bufDial(t, srv)
	checker := &GRPCClient{cc: conn, client: NewRevocationClient(conn)}
	ctx := context.Background()

	status, err := checker.KeyStatus(ctx, "kid-1")
	if err != nil {
		t.Fatalf("KeyStatus: %v", err)
	}
	if status != seal.StatusActive {
		t.Fatalf("status = %q, want active", status)
	}

	srv.Revoke("kid-1")
	status, err = checker.KeyStatus(ctx, "kid-1")
	if err != nil {
		t.Fatalf("KeyStatus: %v", err)
	}
	if status != seal.StatusRevoked {
		t.Fatalf("status = %q, want revoked", status)
	}
}

func TestGRPCClient_ImplementsChecker(t *testing.T) {
	var _ seal.RevocationChecker = (*GRPCClient)(nil)
}

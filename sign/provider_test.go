package sign

import (
	"bytes"
	"errors"
	"testing"
)

func TestSupported(t *testing.T) {
	if !Supported(AlgEd25519) || !Supported(AlgDilithium3) {
		t.Fatalf("built-in algorithms not supported")
	}
	if Supported("rsa-pss") {
		t.Fatalf("unknown algorithm reported as supported")
	}
}

func TestVerify_UnknownAlgorithm(t *testing.T) {
	err := Verify("rsa-pss", []byte("m"), []byte("s"), []byte("k"))
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestEd25519_SignVerify(t *testing.T) {
	p, err := NewEd25519FromSeed(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewEd25519FromSeed: %v", err)
	}
	if p.Algorithm() != AlgEd25519 {
		t.Fatalf("algorithm = %q", p.Algorithm())
	}
	payload := []byte("seal canonical bytes")
	sig, err := p.Sign(payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(AlgEd25519, payload, sig, p.PublicKey()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify(AlgEd25519, []byte("tampered"), sig, p.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestEd25519_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, 32)
	a, err := NewEd25519FromSeed(seed)
	if err != nil {
		t.Fatalf("NewEd25519FromSeed: %v", err)
	}
	b, err := NewEd25519FromSeed(seed)
	if err != nil {
		t.Fatalf("NewEd25519FromSeed: %v", err)
	}
	if !bytes.Equal(a.PublicKey(), b.PublicKey()) {
		t.Fatalf("same seed derived distinct public keys")
	}
	sigA, _ := a.Sign([]byte("m"))
	sigB, _ := b.Sign([]byte("m"))
	if !bytes.Equal(sigA, sigB) {
		t.Fatalf("ed25519 signatures not deterministic for same key and message")
	}
}

func TestEd25519_BadKeyMaterial(t *testing.T) {
	if _, err := NewEd25519FromSeed([]byte("short")); !errors.Is(err, ErrBadKey) {
		t.Fatalf("expected ErrBadKey, got %v", err)
	}
	if _, err := NewEd25519(nil); !errors.Is(err, ErrBadKey) {
		t.Fatalf("expected ErrBadKey, got %v", err)
	}
	err := Verify(AlgEd25519, []byte("m"), []byte("sig"), []byte("short key"))
	if err == nil {
		t.Fatalf("expected error for short public key")
	}
}

func TestDilithium3_SignVerify(t *testing.T) {
	p, err := GenerateDilithium3()
	if err != nil {
		t.Fatalf("GenerateDilithium3: %v", err)
	}
	if p.Algorithm() != AlgDilithium3 {
		t.Fatalf("algorithm = %q", p.Algorithm())
	}
	payload := []byte("post-quantum payload")
	sig, err := p.Sign(payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(AlgDilithium3, payload, sig, p.PublicKey()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := Verify(AlgDilithium3, []byte("tampered"), sig, p.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestCrossAlgorithmRejection(t *testing.T) {
	ed, err := NewEd25519FromSeed(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewEd25519FromSeed: %v", err)
	}
	sig, _ := ed.Sign([]byte("m"))
	// An ed25519 signature presented as dilithium3 must fail, not panic.
	if err := Verify(AlgDilithium3, []byte("m"), sig, ed.PublicKey()); err == nil {
		t.Fatalf("cross-algorithm verification accepted")
	}
}

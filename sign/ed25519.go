package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Ed25519 is the default Provider: 32-byte keys, deterministic signatures.
type Ed25519 struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519 wraps an existing private key.
func NewEd25519(priv ed25519.PrivateKey) (*Ed25519, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes", ErrBadKey, ed25519.PrivateKeySize)
	}
	return &Ed25519{priv: priv, pub: priv.Public().(ed25519.PublicKey)}, nil
}

// NewEd25519FromSeed derives the provider key from a 32-byte seed.
func NewEd25519FromSeed(seed []byte) (*Ed25519, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrBadKey, ed25519.SeedSize)
	}
	return NewEd25519(ed25519.NewKeyFromSeed(seed))
}

// GenerateEd25519 generates a fresh keypair-backed provider.
func GenerateEd25519() (*Ed25519, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewEd25519(priv)
}

func (p *Ed25519) Algorithm() string { return AlgEd25519 }

func (p *Ed25519) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(p.priv, payload), nil
}

func (p *Ed25519) PublicKey() []byte {
	out := make([]byte, len(p.pub))
	copy(out, p.pub)
	return out
}

func verifyEd25519(payload, sig, publicKey []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: ed25519 public key must be %d bytes", ErrBadKey, ed25519.PublicKeySize)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: ed25519 signature must be %d bytes", ErrBadSignature, ed25519.SignatureSize)
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), payload, sig) {
		return ErrBadSignature
	}
	return nil
}

package sign

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Dilithium3 is the post-quantum Provider slot, backed by CIRCL's mode3
// implementation. It plugs into the same call sites as Ed25519; callers only
// ever see the algorithm name.
type Dilithium3 struct {
	priv *mode3.PrivateKey
	pub  *mode3.PublicKey
}

// NewDilithium3 wraps an existing keypair.
func NewDilithium3(pub *mode3.PublicKey, priv *mode3.PrivateKey) (*Dilithium3, error) {
	if pub == nil || priv == nil {
		return nil, fmt.Errorf("%w: missing dilithium3 key material", ErrBadKey)
	}
	return &Dilithium3{priv: priv, pub: pub}, nil
}

// GenerateDilithium3 generates a fresh keypair-backed provider.
func GenerateDilithium3() (*Dilithium3, error) {
	pub, priv, err := mode3.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewDilithium3(pub, priv)
}

func (p *Dilithium3) Algorithm() string { return AlgDilithium3 }

func (p *Dilithium3) Sign(payload []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(p.priv, payload, sig)
	return sig, nil
}

func (p *Dilithium3) PublicKey() []byte {
	b, err := p.pub.MarshalBinary()
	if err != nil {
		// MarshalBinary on a well-formed mode3 public key cannot fail.
		return nil
	}
	return b
}

func verifyDilithium3(payload, sig, publicKey []byte) error {
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("%w: invalid dilithium3 public key", ErrBadKey)
	}
	if len(sig) != mode3.SignatureSize {
		return fmt.Errorf("%w: dilithium3 signature must be %d bytes", ErrBadSignature, mode3.SignatureSize)
	}
	if !mode3.Verify(&pk, payload, sig) {
		return ErrBadSignature
	}
	return nil
}

// Package sign provides the pluggable signature capability used by the seal
// builder and verifier.
//
// Callers select algorithms by name string only; key types never leak into
// call sites, so adding an algorithm means registering one more Provider
// implementation here.
package sign

import (
	"errors"
	"fmt"
)

// Algorithm names accepted by this package.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

var (
	// ErrUnsupportedAlgorithm is returned when an algorithm name is not registered.
	ErrUnsupportedAlgorithm = errors.New("sign: unsupported algorithm")

	// ErrBadSignature is returned when a signature fails cryptographic verification.
	ErrBadSignature = errors.New("sign: signature did not verify")

	// ErrBadKey is returned for malformed key material.
	ErrBadKey = errors.New("sign: invalid key")
)

// Provider is an exclusive handle to one signing key for one algorithm.
//
// A Provider owns its private key material for its lifetime. Sign is safe for
// concurrent use for the in-process implementations in this package; wrappers
// over external signers that are not thread-safe must serialize internally.
type Provider interface {
	// Algorithm returns the stable algorithm name (e.g. "ed25519").
	Algorithm() string

	// Sign signs payload and returns the raw signature bytes.
	Sign(payload []byte) ([]byte, error)

	// PublicKey returns the raw public key bytes for this provider's key.
	PublicKey() []byte
}

// verifyFunc checks sig over payload with the raw public key publicKey.
type verifyFunc func(payload, sig, publicKey []byte) error

// verifiers is the verification-side algorithm registry. Verification needs
// no private key, so it dispatches on the algorithm name alone.
var verifiers = map[string]verifyFunc{
	AlgEd25519:    verifyEd25519,
	AlgDilithium3: verifyDilithium3,
}

// Verify checks sig over payload using the named algorithm and raw public key.
// Returns ErrUnsupportedAlgorithm for unknown names and ErrBadSignature when
// the cryptographic check fails.
func Verify(algorithm string, payload, sig, publicKey []byte) error {
	fn, ok := verifiers[algorithm]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	return fn(payload, sig, publicKey)
}

// Supported reports whether the named algorithm can be verified by this build.
func Supported(algorithm string) bool {
	_, ok := verifiers[algorithm]
	return ok
}

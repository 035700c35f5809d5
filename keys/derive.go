package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeyID returns the stable key id for raw public key bytes: the first 16 hex
// characters of sha256(pub). Key ids are what signatures carry and what the
// verifier's key set is indexed by.
func KeyID(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])[:16]
}

// PublicKeyString encodes raw public key bytes as "<algorithm>:<base64>".
func PublicKeyString(algorithm string, pub []byte) string {
	return algorithm + ":" + base64.StdEncoding.EncodeToString(pub)
}

// PublicKeyFromSeed returns the "ed25519:<base64>" public key string for an
// Ed25519 seed. Format matches the CLI's KMS-lite output.
func PublicKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return PublicKeyString("ed25519", pub)
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed from a
// root seed, with domain separation so role keys can never collide with the
// root or with each other.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("lukhas-seal-kms-lite-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}

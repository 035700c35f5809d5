package keys

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// JWK is one public-key entry in the verifier's key set, in the JWKS-like
// shape `{kty, crv, kid, x, alg}`. X carries the raw public key bytes,
// base64url-encoded without padding.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	X   string `json:"x"`
	Alg string `json:"alg"`
}

// Set is a read-only key-lookup map, indexed by kid. It is the only state the
// verifier retains across calls; it is never mutated after construction.
type Set struct {
	byKid map[string]JWK
}

// ErrUnknownKeyID is returned when a kid is not present in the set.
var ErrUnknownKeyID = errors.New("keys: unknown key id")

// NewSet builds a Set from entries. Duplicate kids are rejected.
func NewSet(entries []JWK) (*Set, error) {
	byKid := make(map[string]JWK, len(entries))
	for _, e := range entries {
		if e.Kid == "" {
			return nil, errors.New("keys: entry missing kid")
		}
		if _, dup := byKid[e.Kid]; dup {
			return nil, fmt.Errorf("keys: duplicate kid %q", e.Kid)
		}
		byKid[e.Kid] = e
	}
	return &Set{byKid: byKid}, nil
}

// ParseSet decodes a JSON key set document: {"keys": [ {kty,crv,kid,x,alg}, ... ]}.
func ParseSet(data []byte) (*Set, error) {
	var doc struct {
		Keys []JWK `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("keys: parse key set: %w", err)
	}
	return NewSet(doc.Keys)
}

// LoadSet reads and parses a JSON key set file.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSet(data)
}

// PublicKey resolves kid to its raw public key bytes and algorithm name.
func (s *Set) PublicKey(kid string) (pub []byte, algorithm string, err error) {
	if s == nil {
		return nil, "", ErrUnknownKeyID
	}
	e, ok := s.byKid[kid]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
	}
	pub, err = base64.RawURLEncoding.DecodeString(e.X)
	if err != nil {
		return nil, "", fmt.Errorf("keys: invalid x for kid %q: %w", kid, err)
	}
	return pub, e.Alg, nil
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byKid)
}

// EntryForPublicKey builds the JWK entry advertising a raw public key under
// its derived kid.
func EntryForPublicKey(algorithm string, pub []byte) JWK {
	e := JWK{
		Kid: KeyID(pub),
		X:   base64.RawURLEncoding.EncodeToString(pub),
		Alg: algorithm,
	}
	switch algorithm {
	case "ed25519":
		e.Kty, e.Crv = "OKP", "Ed25519"
	case "dilithium3":
		e.Kty, e.Crv = "PQK", "Dilithium3"
	}
	return e
}

// MarshalSet renders entries as a JSON key set document.
func MarshalSet(entries []JWK) ([]byte, error) {
	doc := struct {
		Keys []JWK `json:"keys"`
	}{Keys: entries}
	return json.MarshalIndent(doc, "", "  ")
}

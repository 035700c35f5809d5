// Package seal implements creation and verification of portable, tamper-evident
// attestations ("seals") that bind a content hash, an issuer identity, a policy
// fingerprint, and a signature to an arbitrary digital artifact.
package seal

import (
	"strings"
	"time"
)

// Version is the seal record version this library produces and accepts.
//
// The canonicalization rules are versioned together with this tag: any change
// to Canonicalize invalidates previously issued signatures and requires a new
// version value.
const Version = "1.0"

// IssuerScheme is the required URI scheme for issuer identities.
// Issuers take the form "lukhas://org/<tenant>".
const IssuerScheme = "lukhas://org/"

// Seal is a signed attestation record. It is immutable once created: the
// Verifier and the artifact embedders only ever copy or read it.
type Seal struct {
	Version           string             `json:"version"`
	ContentHash       string             `json:"content_hash"`
	MediaType         string             `json:"media_type"`
	CreatedAt         time.Time          `json:"created_at"`
	Expiry            time.Time          `json:"expiry"`
	Issuer            string             `json:"issuer"`
	ModelID           string             `json:"model_id"`
	PolicyFingerprint string             `json:"policy_fingerprint"`
	Jurisdiction      string             `json:"jurisdiction"`
	ProofBundle       string             `json:"proof_bundle"`
	Nonce             string             `json:"nonce"`
	Prev              string             `json:"prev,omitempty"`
	CalibRef          map[string]float64 `json:"calib_ref,omitempty"`
}

// Signature carries the primary signature over a seal's canonical bytes.
//
// Chain stacks auxiliary signatures (device, consent) over the same canonical
// bytes without re-signing the seal; chain entries are never covered by the
// primary signature.
type Signature struct {
	Algorithm string      `json:"algorithm"`
	Signature string      `json:"signature"`
	KeyID     string      `json:"key_id"`
	Chain     []Signature `json:"chain,omitempty"`
}

// Package is the portable unit produced by the Builder: the seal, its
// signature, and a compact projection for transport-constrained channels.
type Package struct {
	Seal      Seal      `json:"seal"`
	Signature Signature `json:"signature"`
	Compact   string    `json:"compact,omitempty"`
}

// Tenant returns the tenant part of a well-formed issuer, or "".
func Tenant(issuer string) string {
	rest, ok := strings.CutPrefix(issuer, IssuerScheme)
	if !ok {
		return ""
	}
	return rest
}

// ValidIssuer reports whether issuer matches "lukhas://org/<tenant>" with a
// non-empty, slash-free tenant.
func ValidIssuer(issuer string) bool {
	tenant := Tenant(issuer)
	return tenant != "" && !strings.Contains(tenant, "/")
}

// checkIssuer returns a structured error for a malformed issuer.
func checkIssuer(issuer string) error {
	if !ValidIssuer(issuer) {
		return newError(KindInput, "SEAL-INPUT-101", "issuer must match lukhas://org/<tenant>")
	}
	return nil
}

// body returns the seal's canonical field mapping. Optional fields that are
// absent are omitted entirely, never present as null; this is the load-bearing
// presence/absence contract for signing.
func (s *Seal) body() map[string]any {
	m := map[string]any{
		"version":            s.Version,
		"content_hash":       s.ContentHash,
		"media_type":         s.MediaType,
		"created_at":         s.CreatedAt.UTC().Format(time.RFC3339),
		"expiry":             s.Expiry.UTC().Format(time.RFC3339),
		"issuer":             s.Issuer,
		"model_id":           s.ModelID,
		"policy_fingerprint": s.PolicyFingerprint,
		"jurisdiction":       s.Jurisdiction,
		"proof_bundle":       s.ProofBundle,
		"nonce":              s.Nonce,
	}
	if s.Prev != "" {
		m["prev"] = s.Prev
	}
	if len(s.CalibRef) > 0 {
		ref := make(map[string]any, len(s.CalibRef))
		for k, v := range s.CalibRef {
			ref[k] = v
		}
		m["calib_ref"] = ref
	}
	return m
}

// CanonicalBytes returns the deterministic byte serialization of the seal.
// These bytes are exactly what gets signed and verified.
func (s *Seal) CanonicalBytes() ([]byte, error) {
	return Canonicalize(s.body())
}

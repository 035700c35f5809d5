package seal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"lukhas.dev/seal/keys"
	"lukhas.dev/seal/sign"
)

var testSeed = bytes.Repeat([]byte{0x42}, 32)

func testBuilder(t *testing.T, opts ...BuilderOption) *Builder {
	t.Helper()
	provider, err := sign.NewEd25519FromSeed(testSeed)
	if err != nil {
		t.Fatalf("NewEd25519FromSeed: %v", err)
	}
	b, err := NewBuilder(provider, opts...)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func testRequest() CreateRequest {
	return CreateRequest{
		Content:           []byte("hello"),
		MediaType:         "text/plain",
		Issuer:            "lukhas://org/acme",
		ModelID:           "gpt-x-2026",
		PolicyFingerprint: "sha256:deadbeef",
		Jurisdiction:      "EU",
		ProofBundle:       "https://proofs.acme.example/run/7",
		TTLDays:           365,
	}
}

func TestCreateSeal_PopulatesRecord(t *testing.T) {
	fixed := time.Date(2026, 8, 26, 9, 30, 15, 999999999, time.UTC)
	b := testBuilder(t, WithClock(func() time.Time { return fixed }))

	pkg, err := b.CreateSeal(testRequest())
	if err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	s := pkg.Seal
	if s.Version != Version {
		t.Fatalf("version = %q, want %q", s.Version, Version)
	}
	if !strings.HasPrefix(s.ContentHash, "sha256:") {
		t.Fatalf("content hash = %q, want sha256 prefix", s.ContentHash)
	}
	wantCreated := fixed.Truncate(time.Second)
	if !s.CreatedAt.Equal(wantCreated) {
		t.Fatalf("created_at = %v, want second-truncated %v", s.CreatedAt, wantCreated)
	}
	if !s.Expiry.Equal(wantCreated.AddDate(0, 0, 365)) {
		t.Fatalf("expiry = %v, want created_at + 365d", s.Expiry)
	}
	if len(s.Nonce) != 32 {
		t.Fatalf("nonce = %q, want 32 hex chars", s.Nonce)
	}
	if pkg.Signature.Algorithm != sign.AlgEd25519 {
		t.Fatalf("algorithm = %q", pkg.Signature.Algorithm)
	}
	if pkg.Signature.KeyID == "" || pkg.Signature.Signature == "" {
		t.Fatalf("signature incomplete: %+v", pkg.Signature)
	}
	if pkg.Compact == "" {
		t.Fatalf("compact projection missing")
	}
}

func TestCreateSeal_InvalidIssuer(t *testing.T) {
	b := testBuilder(t)
	for _, issuer := range []string{"", "acme", "https://org/acme", "lukhas://org/", "lukhas://org/a/b"} {
		req := testRequest()
		req.Issuer = issuer
		if _, err := b.CreateSeal(req); !IsKind(err, KindInput) {
			t.Fatalf("issuer %q: expected KindInput, got %v", issuer, err)
		}
	}
}

func TestCreateSeal_RequiresMediaType(t *testing.T) {
	b := testBuilder(t)
	req := testRequest()
	req.MediaType = ""
	_, err := b.CreateSeal(req)
	if !IsKind(err, KindInput) {
		t.Fatalf("expected KindInput, got %v", err)
	}
	if Code(err) != "SEAL-BUILD-102" {
		t.Fatalf("code = %q", Code(err))
	}
}

func TestCreateSeal_RequiresPolicySource(t *testing.T) {
	b := testBuilder(t) // no Fingerprinter configured
	req := testRequest()
	req.PolicyFingerprint = ""
	req.PolicyRoot = "/does/not/matter"
	if _, err := b.CreateSeal(req); Code(err) != "SEAL-BUILD-103" {
		t.Fatalf("expected SEAL-BUILD-103, got %v", err)
	}
}

type staticFingerprinter string

func (f staticFingerprinter) Fingerprint(root, overlayDir string) (string, error) {
	return string(f), nil
}

func TestCreateSeal_ComputesFingerprintFromRoot(t *testing.T) {
	b := testBuilder(t, WithFingerprinter(staticFingerprinter("sha256:feedface")))
	req := testRequest()
	req.PolicyFingerprint = ""
	req.PolicyRoot = "/etc/policies"
	pkg, err := b.CreateSeal(req)
	if err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	if pkg.Seal.PolicyFingerprint != "sha256:feedface" {
		t.Fatalf("policy fingerprint = %q", pkg.Seal.PolicyFingerprint)
	}
}

func TestCreateSeal_NonceUniquePerSeal(t *testing.T) {
	b := testBuilder(t)
	first, err := b.CreateSeal(testRequest())
	if err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	second, err := b.CreateSeal(testRequest())
	if err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	if first.Seal.Nonce == second.Seal.Nonce {
		t.Fatalf("nonce reused across seals: %q", first.Seal.Nonce)
	}
	if first.Signature.Signature == second.Signature.Signature {
		t.Fatalf("identical signatures for distinct nonces")
	}
}

func TestCreateSeal_AcceptsNonPositiveTTL(t *testing.T) {
	b := testBuilder(t)
	req := testRequest()
	req.TTLDays = -1
	pkg, err := b.CreateSeal(req)
	if err != nil {
		t.Fatalf("CreateSeal with ttl -1: %v", err)
	}
	if !pkg.Seal.Expiry.Before(pkg.Seal.CreatedAt) {
		t.Fatalf("expiry %v not before created_at %v", pkg.Seal.Expiry, pkg.Seal.CreatedAt)
	}
}

func TestCreateBatch_SiblingIsolation(t *testing.T) {
	b := testBuilder(t)
	bad := testRequest()
	bad.Issuer = "not-an-issuer"
	good := testRequest()
	good.ModelID = "batch-model"

	results := b.CreateBatch([]CreateRequest{testRequest(), bad, good})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[0].Package == nil {
		t.Fatalf("entry 0 should succeed: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatalf("entry 1 should fail")
	}
	if results[2].Err != nil || results[2].Package == nil {
		t.Fatalf("entry 2 poisoned by sibling failure: %v", results[2].Err)
	}
	if results[2].Package.Seal.ModelID != "batch-model" {
		t.Fatalf("entry 2 carries wrong request: %+v", results[2].Package.Seal)
	}
}

func TestKeySetEntry_ResolvesOwnSignatures(t *testing.T) {
	b := testBuilder(t)
	entry := b.KeySetEntry()
	if entry.Kty != "OKP" || entry.Crv != "Ed25519" || entry.Alg != sign.AlgEd25519 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	set, err := keys.NewSet([]keys.JWK{entry})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	pkg, err := b.CreateSeal(testRequest())
	if err != nil {
		t.Fatalf("CreateSeal: %v", err)
	}
	if _, _, err := set.PublicKey(pkg.Signature.KeyID); err != nil {
		t.Fatalf("builder's kid not resolvable from its own entry: %v", err)
	}
}

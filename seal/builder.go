package seal

import (
	"encoding/base64"
	"sync"
	"time"

	"lukhas.dev/seal/keys"
	"lukhas.dev/seal/sign"
)

// Fingerprinter computes a policy-pack fingerprint. policy.Fingerprinter is
// the standard implementation.
type Fingerprinter interface {
	Fingerprint(root, overlayDir string) (string, error)
}

// Builder assembles and signs seal packages. It holds the process's exclusive
// reference to its signing capability; nothing else signs with that key.
//
// Builder is safe for concurrent use: sign calls are serialized so that
// providers wrapping external key material (HSM sessions) need not be
// thread-safe themselves.
type Builder struct {
	provider sign.Provider
	keyID    string
	fp       Fingerprinter
	hashAlg  string
	now      func() time.Time

	signMu sync.Mutex
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithKeyID overrides the key id attached to signatures. The default is
// derived from the provider's public key.
func WithKeyID(kid string) BuilderOption {
	return func(b *Builder) { b.keyID = kid }
}

// WithFingerprinter supplies the policy fingerprinter used when a request
// names a policy root instead of a precomputed fingerprint.
func WithFingerprinter(fp Fingerprinter) BuilderOption {
	return func(b *Builder) { b.fp = fp }
}

// WithContentHashAlg selects the content hash algorithm (default sha256).
func WithContentHashAlg(alg string) BuilderOption {
	return func(b *Builder) { b.hashAlg = alg }
}

// WithClock overrides the time source. Tests use this to pin created_at.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder constructs a Builder around a signing provider.
func NewBuilder(provider sign.Provider, opts ...BuilderOption) (*Builder, error) {
	if provider == nil {
		return nil, newError(KindInput, "SEAL-BUILD-001", "signing provider is required")
	}
	b := &Builder{
		provider: provider,
		hashAlg:  DefaultHashAlg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.keyID == "" {
		b.keyID = keys.KeyID(provider.PublicKey())
	}
	return b, nil
}

// CreateRequest carries the caller inputs for one seal.
type CreateRequest struct {
	Content   []byte
	MediaType string
	Issuer    string
	ModelID   string

	// PolicyFingerprint is used verbatim when set; otherwise the builder's
	// Fingerprinter computes one from PolicyRoot/PolicyOverlay. One of the two
	// sources must be available.
	PolicyFingerprint string
	PolicyRoot        string
	PolicyOverlay     string

	Jurisdiction string
	ProofBundle  string

	// TTLDays sets expiry = created_at + TTLDays. Non-positive values are
	// accepted and produce an already-expired seal; expiry ordering is a
	// verification concern, not a creation refusal.
	TTLDays int

	CalibRef map[string]float64
	Prev     string
}

// CreateSeal validates the request, assembles the seal record with the current
// time and a fresh nonce, canonicalizes it, and signs it. Aside from the
// timestamp, nonce, and signing-key use it has no side effects.
//
// It fails fast: the first blocking error is returned, since nothing useful
// can be computed past it.
func (b *Builder) CreateSeal(req CreateRequest) (*Package, error) {
	if err := checkIssuer(req.Issuer); err != nil {
		return nil, err
	}
	if req.MediaType == "" {
		return nil, newError(KindInput, "SEAL-BUILD-102", "media type is required")
	}

	fingerprint := req.PolicyFingerprint
	if fingerprint == "" {
		if b.fp == nil || req.PolicyRoot == "" {
			return nil, newError(KindInput, "SEAL-BUILD-103", "either a policy fingerprint or a policy root is required")
		}
		var err error
		fingerprint, err = b.fp.Fingerprint(req.PolicyRoot, req.PolicyOverlay)
		if err != nil {
			return nil, err
		}
	}

	contentHash, err := ContentHash(b.hashAlg, req.Content)
	if err != nil {
		return nil, err
	}
	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}

	// Truncate to whole seconds so the RFC3339 canonical form round-trips
	// without losing signed precision.
	now := b.now().UTC().Truncate(time.Second)
	s := Seal{
		Version:           Version,
		ContentHash:       contentHash,
		MediaType:         req.MediaType,
		CreatedAt:         now,
		Expiry:            now.AddDate(0, 0, req.TTLDays),
		Issuer:            req.Issuer,
		ModelID:           req.ModelID,
		PolicyFingerprint: fingerprint,
		Jurisdiction:      req.Jurisdiction,
		ProofBundle:       req.ProofBundle,
		Nonce:             nonce,
		Prev:              req.Prev,
		CalibRef:          req.CalibRef,
	}

	canonical, err := s.CanonicalBytes()
	if err != nil {
		return nil, err
	}

	b.signMu.Lock()
	sig, err := b.provider.Sign(canonical)
	b.signMu.Unlock()
	if err != nil {
		return nil, wrapError(KindInternal, "SEAL-BUILD-201", "signing backend failure", err)
	}

	pkg := &Package{
		Seal: s,
		Signature: Signature{
			Algorithm: b.provider.Algorithm(),
			Signature: base64.StdEncoding.EncodeToString(sig),
			KeyID:     b.keyID,
		},
	}
	compact, err := CompactEncode(pkg)
	if err != nil {
		return nil, err
	}
	pkg.Compact = compact
	return pkg, nil
}

// Countersign appends an auxiliary signature (device, consent) over the same
// canonical bytes to the package's signature chain. The primary signature is
// never re-computed: chain entries live outside the signed record.
func Countersign(pkg *Package, provider sign.Provider) error {
	if provider == nil {
		return newError(KindInput, "SEAL-BUILD-001", "signing provider is required")
	}
	canonical, err := pkg.Seal.CanonicalBytes()
	if err != nil {
		return err
	}
	raw, err := provider.Sign(canonical)
	if err != nil {
		return wrapError(KindInternal, "SEAL-BUILD-201", "signing backend failure", err)
	}
	pkg.Signature.Chain = append(pkg.Signature.Chain, Signature{
		Algorithm: provider.Algorithm(),
		Signature: base64.StdEncoding.EncodeToString(raw),
		KeyID:     keys.KeyID(provider.PublicKey()),
	})
	return nil
}

// BatchResult reports the outcome for one entry of a batch request.
type BatchResult struct {
	Index   int
	Package *Package
	Err     error
}

// CreateBatch signs every request independently: a failing entry is reported
// in its slot and never aborts or corrupts its siblings.
func (b *Builder) CreateBatch(reqs []CreateRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	for i, req := range reqs {
		pkg, err := b.CreateSeal(req)
		results[i] = BatchResult{Index: i, Package: pkg, Err: err}
	}
	return results
}

// KeySetEntry returns the JWKS-like entry a verifier needs to resolve this
// builder's signatures.
func (b *Builder) KeySetEntry() keys.JWK {
	e := keys.EntryForPublicKey(b.provider.Algorithm(), b.provider.PublicKey())
	e.Kid = b.keyID
	return e
}

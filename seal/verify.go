package seal

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"lukhas.dev/seal/keys"
	"lukhas.dev/seal/sign"
)

// ErrorCode identifies one verification failure in a Result.
type ErrorCode string

const (
	CodeHashMismatch    ErrorCode = "hash_mismatch"
	CodeSignatureBad    ErrorCode = "signature_invalid"
	CodeUnknownKey      ErrorCode = "unknown_key_id"
	CodeUnsupportedAlg  ErrorCode = "unsupported_algorithm"
	CodeExpired         ErrorCode = "expired"
	CodeFormatInvalid   ErrorCode = "format_invalid"
	CodeRevokedKey      ErrorCode = "revoked_key"
	CodeRevocationUnrea ErrorCode = "revocation_unreachable"
	CodeBundleUnreach   ErrorCode = "proof_bundle_unreachable"
)

// Warning is a non-fatal verification finding. Warnings never affect Valid.
type Warning struct {
	Code   ErrorCode `json:"code"`
	Detail string    `json:"detail,omitempty"`
}

// RevocationStatus is the resolved standing of a signing key.
type RevocationStatus string

const (
	StatusActive  RevocationStatus = "active"
	StatusRevoked RevocationStatus = "revoked"
	StatusUnknown RevocationStatus = "unknown"
)

// Result is the structured outcome of seal verification. Valid is true iff
// Errors is empty.
type Result struct {
	Valid            bool             `json:"valid"`
	Issuer           string           `json:"issuer"`
	ModelID          string           `json:"model_id"`
	ContentHash      string           `json:"content_hash"`
	CreatedAt        time.Time        `json:"created_at"`
	Jurisdiction     string           `json:"jurisdiction"`
	Errors           []ErrorCode      `json:"errors"`
	Warnings         []Warning        `json:"warnings"`
	OnlineChecked    bool             `json:"online_checked"`
	RevocationStatus RevocationStatus `json:"revocation_status,omitempty"`
}

func (r *Result) addError(code ErrorCode) {
	r.Errors = append(r.Errors, code)
}

func (r *Result) addWarning(code ErrorCode, detail string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Detail: detail})
}

// RevocationChecker resolves the standing of a signing key against an external
// revocation service. The engine only interprets the returned status; custody
// of the revocation list is outside its scope.
type RevocationChecker interface {
	KeyStatus(ctx context.Context, keyID string) (RevocationStatus, error)
}

// BundleChecker validates, best-effort, that a proof bundle pointer resolves.
type BundleChecker interface {
	CheckBundle(ctx context.Context, url string) error
}

// Verifier runs the staged verification pipeline. It owns only a read-only
// key-lookup set; it never mutates its inputs and is safe to share across
// goroutines.
type Verifier struct {
	keys          *keys.Set
	now           func() time.Time
	revocation    RevocationChecker
	bundle        BundleChecker
	onlineTimeout time.Duration
	strictOnline  bool
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the time source for the temporal check.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// WithRevocationChecker enables the online revocation stage.
func WithRevocationChecker(rc RevocationChecker) VerifierOption {
	return func(v *Verifier) { v.revocation = rc }
}

// WithBundleChecker enables best-effort proof-bundle validation during the
// online stage.
func WithBundleChecker(bc BundleChecker) VerifierOption {
	return func(v *Verifier) { v.bundle = bc }
}

// WithOnlineTimeout bounds each online-stage network call (default 5s).
func WithOnlineTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.onlineTimeout = d }
}

// WithStrictOnline escalates online-stage failures from warnings to errors.
// The default is fail-open: an unreachable revocation service must not turn
// every verification in the fleet invalid.
func WithStrictOnline() VerifierOption {
	return func(v *Verifier) { v.strictOnline = true }
}

// NewVerifier constructs a Verifier over a read-only key set.
func NewVerifier(keySet *keys.Set, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		keys:          keySet,
		now:           time.Now,
		onlineTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifySeal runs the full pipeline against content and a seal package.
//
// Stage order is fixed: content hash, signature, temporal validity,
// format/schema, then optional online checks. The pipeline never fails fast:
// every applicable error and warning is accumulated so one call surfaces the
// full diagnostic picture. A content-hash mismatch only short-circuits the
// signature stage (the crypto result would be meaningless); the cheap checks
// still run.
func (v *Verifier) VerifySeal(ctx context.Context, content []byte, pkg *Package, online bool) *Result {
	s := &pkg.Seal
	res := &Result{
		Issuer:       s.Issuer,
		ModelID:      s.ModelID,
		ContentHash:  s.ContentHash,
		CreatedAt:    s.CreatedAt,
		Jurisdiction: s.Jurisdiction,
	}

	// Stage 1: content hash.
	hashOK := false
	if ok, err := matchesContentHash(s.ContentHash, content); err != nil {
		res.addError(CodeFormatInvalid)
	} else if !ok {
		res.addError(CodeHashMismatch)
	} else {
		hashOK = true
	}

	// Stage 2: signature over the canonical seal bytes.
	if hashOK {
		v.checkSignature(res, s, &pkg.Signature)
		v.checkChain(res, s, pkg.Signature.Chain)
	}

	// Stage 3: temporal validity. Past expiry is an error, never a warning.
	if !s.Expiry.After(v.now()) {
		res.addError(CodeExpired)
	}

	// Stage 4: format/schema.
	v.checkFormat(res, s)

	// Stage 5: online checks, opt-in.
	if online {
		v.checkOnline(ctx, res, pkg)
	}

	res.Valid = len(res.Errors) == 0
	if res.Errors == nil {
		res.Errors = []ErrorCode{}
	}
	if res.Warnings == nil {
		res.Warnings = []Warning{}
	}
	return res
}

func (v *Verifier) checkSignature(res *Result, s *Seal, sig *Signature) {
	pub, keyAlg, err := v.keys.PublicKey(sig.KeyID)
	if err != nil {
		if errors.Is(err, keys.ErrUnknownKeyID) {
			res.addError(CodeUnknownKey)
		} else {
			res.addError(CodeSignatureBad)
		}
		return
	}
	if !sign.Supported(sig.Algorithm) || (keyAlg != "" && keyAlg != sig.Algorithm) {
		res.addError(CodeUnsupportedAlg)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(sig.Signature)
	if err != nil {
		res.addError(CodeSignatureBad)
		return
	}
	canonical, err := s.CanonicalBytes()
	if err != nil {
		res.addError(CodeFormatInvalid)
		return
	}
	if err := sign.Verify(sig.Algorithm, canonical, raw, pub); err != nil {
		if errors.Is(err, sign.ErrUnsupportedAlgorithm) {
			res.addError(CodeUnsupportedAlg)
		} else {
			res.addError(CodeSignatureBad)
		}
	}
}

// checkChain validates auxiliary signatures. Chain entries are best-effort
// attachments from devices or consent flows: one whose key is not in the set
// is a warning, but a resolvable entry that fails crypto is a real error.
func (v *Verifier) checkChain(res *Result, s *Seal, chain []Signature) {
	for _, sig := range chain {
		pub, keyAlg, err := v.keys.PublicKey(sig.KeyID)
		if err != nil {
			res.addWarning(CodeUnknownKey, "chain key "+sig.KeyID+" not in key set")
			continue
		}
		if !sign.Supported(sig.Algorithm) || (keyAlg != "" && keyAlg != sig.Algorithm) {
			res.addError(CodeUnsupportedAlg)
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(sig.Signature)
		if err != nil {
			res.addError(CodeSignatureBad)
			continue
		}
		canonical, err := s.CanonicalBytes()
		if err != nil {
			res.addError(CodeFormatInvalid)
			return
		}
		if err := sign.Verify(sig.Algorithm, canonical, raw, pub); err != nil {
			res.addError(CodeSignatureBad)
		}
	}
}

func (v *Verifier) checkFormat(res *Result, s *Seal) {
	bad := false
	if s.Version != Version {
		bad = true
	}
	if !ValidIssuer(s.Issuer) {
		bad = true
	}
	if _, _, err := SplitHash(s.ContentHash); err != nil {
		bad = true
	}
	if s.MediaType == "" || s.PolicyFingerprint == "" || s.Nonce == "" {
		bad = true
	}
	if s.CreatedAt.IsZero() || s.Expiry.IsZero() {
		bad = true
	}
	if bad {
		res.addError(CodeFormatInvalid)
	}
}

func (v *Verifier) checkOnline(ctx context.Context, res *Result, pkg *Package) {
	if v.revocation == nil && v.bundle == nil {
		res.addWarning(CodeRevocationUnrea, "no online checker configured")
		return
	}
	res.OnlineChecked = true

	if v.revocation != nil {
		cctx, cancel := context.WithTimeout(ctx, v.onlineTimeout)
		status, err := v.revocation.KeyStatus(cctx, pkg.Signature.KeyID)
		cancel()
		switch {
		case err != nil:
			res.RevocationStatus = StatusUnknown
			if v.strictOnline {
				res.addError(CodeRevocationUnrea)
			} else {
				res.addWarning(CodeRevocationUnrea, err.Error())
			}
		case status == StatusRevoked:
			// A positive revocation answer is a real verdict, not an outage;
			// it is an error even in fail-open mode.
			res.RevocationStatus = StatusRevoked
			res.addError(CodeRevokedKey)
		default:
			res.RevocationStatus = status
		}
	}

	if v.bundle != nil && pkg.Seal.ProofBundle != "" {
		cctx, cancel := context.WithTimeout(ctx, v.onlineTimeout)
		err := v.bundle.CheckBundle(cctx, pkg.Seal.ProofBundle)
		cancel()
		if err != nil {
			if v.strictOnline {
				res.addError(CodeBundleUnreach)
			} else {
				res.addWarning(CodeBundleUnreach, err.Error())
			}
		}
	}
}

package seal

import (
	"encoding/base64"
	"encoding/json"
)

// compactHashHexLen is how many hex digits of the content hash survive the
// compact projection.
const compactHashHexLen = 16

// compactSigSuffixLen is how many trailing base64 characters of the primary
// signature survive the compact projection.
const compactSigSuffixLen = 12

// compactRecord is the wire shape of the compact projection. Single-letter
// keys keep the base64url payload inside a standard QR code budget.
type compactRecord struct {
	V string `json:"v"`
	H string `json:"h"`
	I string `json:"i"`
	M string `json:"m"`
	J string `json:"j"`
	P string `json:"p"`
	N string `json:"n"`
	S string `json:"s"`
}

// CompactSeal is the decoded minimal projection of a seal package.
//
// The signature suffix is truncated, so a compact seal is NOT independently
// verifiable: it is a pointer that requires online verification against the
// full package (located via ProofBundle or the issuer's records), not a
// standalone proof.
type CompactSeal struct {
	Version         string
	ContentHashHint string
	Issuer          string
	ModelID         string
	Jurisdiction    string
	ProofBundle     string
	Nonce           string
	SignatureSuffix string
}

// CompactEncode projects pkg to its transport-constrained form:
// base64url (no padding) over the minimal JSON record.
func CompactEncode(pkg *Package) (string, error) {
	s := &pkg.Seal
	hashHint := s.ContentHash
	if alg, hexDigest, err := SplitHash(s.ContentHash); err == nil && len(hexDigest) > compactHashHexLen {
		hashHint = alg + ":" + hexDigest[:compactHashHexLen]
	}
	sig := pkg.Signature.Signature
	if len(sig) > compactSigSuffixLen {
		sig = sig[len(sig)-compactSigSuffixLen:]
	}
	rec := compactRecord{
		V: s.Version,
		H: hashHint,
		I: Tenant(s.Issuer),
		M: s.ModelID,
		J: s.Jurisdiction,
		P: s.ProofBundle,
		N: s.Nonce,
		S: sig,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", wrapError(KindInternal, "SEAL-COMPACT-001", "marshal compact record", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// CompactDecode parses a compact seal string. The issuer short-form is
// re-expanded to the full "lukhas://org/<tenant>" identity.
func CompactDecode(encoded string) (*CompactSeal, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, wrapError(KindFormat, "SEAL-COMPACT-101", "compact seal is not base64url", err)
	}
	var rec compactRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, wrapError(KindFormat, "SEAL-COMPACT-102", "compact seal payload malformed", err)
	}
	if rec.V == "" || rec.I == "" {
		return nil, newError(KindFormat, "SEAL-COMPACT-103", "compact seal missing version or issuer")
	}
	return &CompactSeal{
		Version:         rec.V,
		ContentHashHint: rec.H,
		Issuer:          IssuerScheme + rec.I,
		ModelID:         rec.M,
		Jurisdiction:    rec.J,
		ProofBundle:     rec.P,
		Nonce:           rec.N,
		SignatureSuffix: rec.S,
	}, nil
}

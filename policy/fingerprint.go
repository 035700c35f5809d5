// Package policy computes fingerprints over policy packs. The engine never
// interprets policy content; it only proves which policy bytes governed seal
// creation.
package policy

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"lukhas.dev/seal/seal"
)

// globs is the fixed set of policy-pack file patterns hashed under a policy
// root: the core policy definitions, issuer/jurisdiction mappings, and the
// pack's own test vectors.
var globs = []string{
	"policy*.json",
	"policy*.yaml",
	"mapping*.json",
	"mapping*.yaml",
	"test*.json",
	"test*.yaml",
}

// Fingerprinter hashes a sorted set of policy-pack files into one
// algorithm-tagged fingerprint value.
type Fingerprinter struct {
	hashAlg        string
	skipUnreadable bool
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithHashAlg selects the fingerprint hash algorithm (default sha256).
func WithHashAlg(alg string) Option {
	return func(f *Fingerprinter) { f.hashAlg = alg }
}

// WithSkipUnreadable silently skips files that cannot be opened instead of
// failing. This matches the historical reference behavior; it is off by
// default because a skipped file silently changes which policy the
// fingerprint attests to.
func WithSkipUnreadable() Option {
	return func(f *Fingerprinter) { f.skipUnreadable = true }
}

// New constructs a Fingerprinter.
func New(opts ...Option) *Fingerprinter {
	f := &Fingerprinter{hashAlg: seal.DefaultHashAlg}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fingerprint hashes the policy pack under root, plus every regular file under
// overlayDir when non-empty, and returns "<algo>:<hex>".
//
// The matched path list is sorted before hashing so the fingerprint is
// invariant to directory enumeration order.
func (f *Fingerprinter) Fingerprint(root, overlayDir string) (string, error) {
	paths, err := f.collect(root, overlayDir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", newInputError("no policy files under " + root)
	}

	var concat []byte
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if f.skipUnreadable {
				continue
			}
			return "", newIOError("read policy file "+p, err)
		}
		concat = append(concat, data...)
	}
	return seal.ContentHash(f.hashAlg, concat)
}

func (f *Fingerprinter) collect(root, overlayDir string) ([]string, error) {
	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(filepath.Join(root, g))
		if err != nil {
			return nil, newInputError("bad policy glob " + g)
		}
		paths = append(paths, matches...)
	}
	if overlayDir != "" {
		err := filepath.WalkDir(overlayDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if f.skipUnreadable {
					return nil
				}
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, newIOError("walk overlay "+overlayDir, err)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func newInputError(msg string) error {
	return &seal.Error{Kind: seal.KindInput, Code: "SEAL-POLICY-101", Message: msg}
}

func newIOError(msg string, cause error) error {
	return &seal.Error{Kind: seal.KindIO, Code: "SEAL-POLICY-102", Message: msg, Cause: cause}
}

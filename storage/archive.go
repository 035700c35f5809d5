// Package storage defines the content-addressed archive for issued seal
// packages. Issuers that need to serve the full package behind a compact seal
// or a proof-bundle pointer archive the package JSON here at creation time.
package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Archive is a minimal content-addressed store for canonical package bytes.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Archive interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrInvalidCID  = errors.New("storage: invalid cid")
	ErrCIDMismatch = errors.New("storage: cid mismatch")
)

// IsNotFound reports whether err is the archive's not-found sentinel.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// PackageCID derives the archive CID for package bytes: CIDv1 with the "raw"
// multicodec and a sha2-256 multihash, IPFS-compatible so archives can be
// mirrored into any CAS later.
func PackageCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

package seal

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DefaultHashAlg is the hash algorithm used for new content hashes and policy
// fingerprints.
const DefaultHashAlg = "sha256"

// digestFor hashes message with the named 256/512-bit algorithm.
func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, newError(KindFormat, "SEAL-HASH-201", "unsupported hash algorithm "+hashAlg)
	}
}

// ContentHash returns the algorithm-tagged hash of data: "<algo>:<hex>".
func ContentHash(hashAlg string, data []byte) (string, error) {
	sum, err := digestFor(hashAlg, data)
	if err != nil {
		return "", err
	}
	return hashAlg + ":" + hex.EncodeToString(sum), nil
}

// SplitHash splits an algorithm-tagged hash into its algorithm and hex digest.
func SplitHash(tagged string) (alg, hexDigest string, err error) {
	alg, hexDigest, ok := strings.Cut(tagged, ":")
	if !ok || alg == "" || hexDigest == "" {
		return "", "", newError(KindFormat, "SEAL-HASH-202", "hash must be <algo>:<hex>")
	}
	return alg, hexDigest, nil
}

// matchesContentHash recomputes the tagged hash over data and compares in
// constant time.
func matchesContentHash(tagged string, data []byte) (bool, error) {
	alg, want, err := SplitHash(tagged)
	if err != nil {
		return false, err
	}
	sum, err := digestFor(alg, data)
	if err != nil {
		return false, err
	}
	got := hex.EncodeToString(sum)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1, nil
}

package seal

import (
	"crypto/rand"
	"encoding/hex"
)

// nonceSize is the number of random bytes in a seal nonce.
const nonceSize = 16

// NewNonce returns a fresh cryptographically random nonce, hex-encoded.
// The nonce makes every seal unique even for identical content and metadata.
func NewNonce() (string, error) {
	b := make([]byte, nonceSize)
	if _, err := rand.Read(b); err != nil {
		return "", wrapError(KindInternal, "SEAL-NONCE-001", "read random nonce", err)
	}
	return hex.EncodeToString(b), nil
}

// Package sha256 provides content hashing for rendered documents.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher names stored documents by their SHA-256 digest.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash implements styleguide.Hasher.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hasher produces a digest of the registry layout.
type Hasher interface {
	// Hash returns the hex-encoded digest of data.
	Hash(data []byte) (string, error)
}

// blake2bHasher implements BLAKE2b-256 hashing.
type blake2bHasher struct{}

// Blake2bHasher returns a BLAKE2b-256 hasher, the default for fingerprints.
func Blake2bHasher() Hasher {
	return &blake2bHasher{}
}

func (h *blake2bHasher) Hash(data []byte) (string, error) {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// sha256Hasher implements SHA-256 hashing.
type sha256Hasher struct{}

// SHA256Hasher returns a SHA-256 hasher.
func SHA256Hasher() Hasher {
	return &sha256Hasher{}
}

func (h *sha256Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprint returns the BLAKE2b-256 digest of the registered key layout.
// Two services with the same registrations in any order share a fingerprint.
func (s *Service) Fingerprint() (string, error) {
	return s.FingerprintWith(Blake2bHasher())
}

// FingerprintWith digests the registered key layout with h.
func (s *Service) FingerprintWith(h Hasher) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return h.Hash(layout(s.registry))
}

// layout renders one line per registered key in stable order.
func layout(r *Registry) []byte {
	var buf []byte
	for _, key := range r.Keys() {
		buf = fmt.Appendf(buf, "%s\n", keyOrder(key))
	}
	return buf
}

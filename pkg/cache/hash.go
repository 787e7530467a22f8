package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/planview/planview/pkg/graph"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint derives the cache key for a parsed graph from its canonical
// serialization, so two descriptions of the same graph (different statement
// order, whitespace, comments) share one cache entry.
func Fingerprint(g *graph.Graph) string {
	return Hash(g.Canonical())
}

// Package cache stores serialized analysis results keyed by graph
// fingerprint. Backends share one contract: Get reports a miss rather than an
// error for absent or unreadable entries, Set is idempotent, and operations
// on distinct keys never block each other.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by every backend.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss; a
	// malformed or expired entry counts as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. ttl <= 0 means no expiration. Re-setting an
	// existing key with the same data is a no-op.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

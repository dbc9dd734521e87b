// ABOUTME: Key-value interface for the local persistence fallback.
// ABOUTME: Implemented by SQLite, Badger, Charm KV, and Redis backends.
package storage

import "errors"

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("not found")

// KV is the local store that holds serialized JSON blobs.
// This interface allows swapping implementations (e.g., for testing).
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Lifecycle
	Close() error
}

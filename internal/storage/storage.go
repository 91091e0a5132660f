// Package storage defines the key/value JSON store the managers persist
// into. Writes are synchronous and best-effort: callers log failures and keep
// going, in-memory state stays authoritative.
package storage

import "errors"

var ErrNotFound = errors.New("not found")

// Store is a namespaced key/value JSON store.
type Store interface {
	// Get unmarshals the value stored under key into dest. Returns
	// ErrNotFound if the key is absent.
	Get(key string, dest any) error
	Set(key string, value any) error
	Remove(key string) error
}

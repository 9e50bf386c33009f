// Package storage defines the tab-scoped key/value capability that session
// persistence is built on, plus the backends that implement it.
//
// # Scoping
//
// A [Backend] hands out one [Storage] per tab identifier. Keys written through
// one tab's Storage are invisible to every other tab. Backends are safe for
// concurrent use; no cross-tab coordination is attempted and the last write to
// a slot wins.
//
// # What this package must NOT do
//
//   - Interpret stored values (they are opaque text to every backend).
//   - Expire entries on its own; expiry policy belongs to the session package.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned (possibly wrapped) when a backend cannot serve a
// read, write or delete.
var ErrUnavailable = errors.New("storage unavailable")

// ErrInvalidTab is returned by backends when a tab identifier is empty.
var ErrInvalidTab = errors.New("invalid tab identifier")

// Storage is a single tab's key/value slot set.
type Storage interface {
	// Read returns the value for key. ok is false when nothing is stored.
	Read(ctx context.Context, key string) (value string, ok bool, err error)
	// Write stores value under key, replacing any prior value.
	Write(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend produces tab-scoped Storage views over one physical store.
type Backend interface {
	Tab(tabID string) (Storage, error)
}

// NormalizeTab trims a tab identifier and rejects empty values.
func NormalizeTab(tabID string) (string, error) {
	tabID = strings.TrimSpace(tabID)
	if tabID == "" {
		return "", ErrInvalidTab
	}
	return tabID, nil
}

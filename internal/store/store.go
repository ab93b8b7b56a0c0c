// Package store provides the persistent key-value store backing the task
// repository. Values are opaque blobs; the repository owns their format.
package store

import "context"

// Well-known keys in the store.
const (
	// KeyTodos holds the full task list as a single JSON blob.
	KeyTodos = "todos"
	// KeyTheme holds the UI theme preference ("light" or "dark").
	KeyTheme = "theme"
)

// Store is a persistent key-value store. Get reports absence through the
// found flag rather than an error: a missing key is a normal condition
// (first run yields an empty repository).
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

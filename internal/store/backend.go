package store

import "context"

// Key names of the persisted values. Backends may namespace them.
const (
	KeyBookmarks  = "bookmarks"
	KeyTags       = "allTags"
	KeyCategories = "customCategories"
	KeyRevision   = "revision"
)

// Keys lists every value making up a collection.
var Keys = []string{KeyBookmarks, KeyTags, KeyCategories, KeyRevision}

// Backend is the opaque key-value store holding the collection.
type Backend interface {
	// Get returns the values of the keys that exist. Missing keys are
	// absent from the map, not an error.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set writes every value atomically.
	Set(ctx context.Context, values map[string][]byte) error

	// CompareAndSet writes values only if guardKey currently holds expected
	// (nil meaning the key does not exist). A mismatch returns
	// domain.ErrConflict.
	CompareAndSet(ctx context.Context, guardKey string, expected []byte, values map[string][]byte) error

	Ping(ctx context.Context) error
}

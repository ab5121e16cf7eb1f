package storage

import "context"

// IMedium is the persistent string-keyed storage shared by the cache store,
// the offline queue and the session record. Implementations namespace nothing
// themselves: callers own their key prefixes.
type IMedium interface {
	// Get returns (value, true, nil) when present, ("", false, nil) when absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or overwrites key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every key starting with prefix ("" lists everything).
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

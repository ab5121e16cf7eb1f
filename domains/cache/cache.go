package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is the persisted shape of a cached response. Timestamps are stored
// as unix milliseconds so records written by older admin builds still parse.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Expiry    int64           `json:"expiry"`
}

func (e Entry) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

func (e Entry) ExpiresAt() time.Time {
	return time.UnixMilli(e.Expiry)
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli() > e.Expiry
}

type CacheStats struct {
	Entries   int    `json:"entries"`
	Expired   int    `json:"expired"`
	TotalSize int64  `json:"total_size"`
	HumanSize string `json:"human_size"`
}

// ICacheStore is an advisory key/value cache with per-entry expiry. None of
// its operations surface storage errors: a failing medium degrades to a miss.
type ICacheStore interface {
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration)
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	Remove(ctx context.Context, key string)
	Clear(ctx context.Context)
	Has(ctx context.Context, key string) bool
	// Age is for observability only and never evicts.
	Age(ctx context.Context, key string) (time.Duration, bool)
	Stats(ctx context.Context) (CacheStats, error)
}

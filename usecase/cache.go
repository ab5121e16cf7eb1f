package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const DefaultCacheKeyPrefix = "api_cache_"

type cacheStore struct {
	medium domainStorage.IMedium
	prefix string
	now    func() time.Time
}

type CacheOption func(*cacheStore)

// WithClock swaps the time source, mainly for expiry tests.
func WithClock(now func() time.Time) CacheOption {
	return func(s *cacheStore) {
		s.now = now
	}
}

// WithKeyPrefix sets the namespace the store owns on the shared medium.
func WithKeyPrefix(prefix string) CacheOption {
	return func(s *cacheStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewCacheStore(medium domainStorage.IMedium, opts ...CacheOption) domainCache.ICacheStore {
	s := &cacheStore{
		medium: medium,
		prefix: DefaultCacheKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cacheStore) storageKey(key string) string {
	return s.prefix + key
}

func (s *cacheStore) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		logrus.WithError(err).Warnf("[CACHE] refusing to cache non-JSON value for %s", key)
		return
	}

	now := s.now()
	entry := domainCache.Entry{
		Value:     compact.Bytes(),
		Timestamp: now.UnixMilli(),
		Expiry:    now.Add(ttl).UnixMilli(),
	}
	// keep the payload bytes as received, json.Marshal would HTML-escape them
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		logrus.WithError(err).Warnf("[CACHE] failed to serialize %s", key)
		return
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")
	if err := s.medium.Set(ctx, s.storageKey(key), string(data)); err != nil {
		logrus.WithError(err).Warnf("[CACHE] failed to store %s", key)
	}
}

func (s *cacheStore) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, ok := s.load(ctx, key)
	if !ok {
		return nil, false
	}
	if entry.Expired(s.now()) {
		logrus.Debugf("[CACHE] %s expired, evicting", key)
		s.Remove(ctx, key)
		return nil, false
	}
	return entry.Value, true
}

func (s *cacheStore) Remove(ctx context.Context, key string) {
	if err := s.medium.Remove(ctx, s.storageKey(key)); err != nil {
		logrus.WithError(err).Warnf("[CACHE] failed to remove %s", key)
	}
}

func (s *cacheStore) Clear(ctx context.Context) {
	keys, err := s.medium.Keys(ctx, s.prefix)
	if err != nil {
		logrus.WithError(err).Warn("[CACHE] failed to list keys for clear")
		return
	}
	for _, k := range keys {
		if err := s.medium.Remove(ctx, k); err != nil {
			logrus.WithError(err).Warnf("[CACHE] failed to remove %s during clear", k)
		}
	}
	logrus.Infof("[CACHE] cleared %d entries", len(keys))
}

func (s *cacheStore) Has(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

func (s *cacheStore) Age(ctx context.Context, key string) (time.Duration, bool) {
	raw, ok, err := s.medium.Get(ctx, s.storageKey(key))
	if err != nil || !ok {
		return 0, false
	}
	var entry domainCache.Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return 0, false
	}
	return s.now().Sub(entry.StoredAt()), true
}

func (s *cacheStore) Stats(ctx context.Context) (domainCache.CacheStats, error) {
	keys, err := s.medium.Keys(ctx, s.prefix)
	if err != nil {
		return domainCache.CacheStats{}, err
	}

	var stats domainCache.CacheStats
	now := s.now()
	for _, k := range keys {
		raw, ok, err := s.medium.Get(ctx, k)
		if err != nil || !ok {
			continue
		}
		stats.Entries++
		stats.TotalSize += int64(len(k) + len(raw))

		var entry domainCache.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Expired(now) {
			stats.Expired++
		}
	}
	stats.HumanSize = humanize.Bytes(uint64(stats.TotalSize))
	return stats, nil
}

// load reads and decodes one record. Unreadable records are evicted.
func (s *cacheStore) load(ctx context.Context, key string) (domainCache.Entry, bool) {
	raw, ok, err := s.medium.Get(ctx, s.storageKey(key))
	if err != nil {
		logrus.WithError(err).Warnf("[CACHE] failed to read %s", key)
		return domainCache.Entry{}, false
	}
	if !ok {
		return domainCache.Entry{}, false
	}

	var entry domainCache.Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || len(entry.Value) == 0 {
		logrus.Warnf("[CACHE] corrupted entry for %s, evicting", key)
		s.Remove(ctx, key)
		return domainCache.Entry{}, false
	}
	return entry, true
}

package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/AzielCF/az-laundry/infrastructure/valkey"
)

// ValkeyMedium stores every key under "<prefix>kv:". Expiry stays the cache
// store's business; keys are written without a server-side TTL.
type ValkeyMedium struct {
	client *valkey.Client
	prefix string
}

func NewValkeyMedium(client *valkey.Client) *ValkeyMedium {
	return &ValkeyMedium{
		client: client,
		prefix: client.Key("kv") + ":",
	}
}

func (m *ValkeyMedium) fullKey(key string) string {
	return m.prefix + key
}

func (m *ValkeyMedium) Get(ctx context.Context, key string) (string, bool, error) {
	inner := m.client.Inner()
	value, err := inner.Do(ctx, inner.B().Get().Key(m.fullKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (m *ValkeyMedium) Set(ctx context.Context, key, value string) error {
	inner := m.client.Inner()
	if err := inner.Do(ctx, inner.B().Set().Key(m.fullKey(key)).Value(value).Build()).Error(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (m *ValkeyMedium) Remove(ctx context.Context, key string) error {
	inner := m.client.Inner()
	if err := inner.Do(ctx, inner.B().Del().Key(m.fullKey(key)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (m *ValkeyMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	full, err := m.client.ScanPrefix(ctx, m.fullKey(prefix))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		if len(k) >= len(m.prefix) {
			keys = append(keys, k[len(m.prefix):])
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *ValkeyMedium) Close() error {
	m.client.Close()
	return nil
}

// Client exposes the connection so the websocket relay can share it.
func (m *ValkeyMedium) Client() *valkey.Client {
	return m.client
}

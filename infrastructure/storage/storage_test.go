package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AzielCF/az-laundry/core/config"
	"github.com/AzielCF/az-laundry/core/database"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	"github.com/AzielCF/az-laundry/infrastructure/valkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseMedium runs the contract every medium must satisfy.
func exerciseMedium(t *testing.T, m domainStorage.IMedium) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "api_cache_api_services", `{"value":[]}`))
	require.NoError(t, m.Set(ctx, "api_cache_api_orders", `{"value":[1]}`))
	require.NoError(t, m.Set(ctx, "apixcache_other", `x`))
	require.NoError(t, m.Set(ctx, "offline_queue", `[]`))

	value, ok, err := m.Get(ctx, "api_cache_api_orders")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"value":[1]}`, value)

	require.NoError(t, m.Set(ctx, "api_cache_api_orders", `{"value":[2]}`))
	value, _, err = m.Get(ctx, "api_cache_api_orders")
	require.NoError(t, err)
	assert.Equal(t, `{"value":[2]}`, value)

	keys, err := m.Keys(ctx, "api_cache_")
	require.NoError(t, err)
	assert.Equal(t, []string{"api_cache_api_orders", "api_cache_api_services"}, keys)

	require.NoError(t, m.Remove(ctx, "api_cache_api_orders"))
	require.NoError(t, m.Remove(ctx, "api_cache_api_orders"))
	_, ok, err = m.Get(ctx, "api_cache_api_orders")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err = m.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"api_cache_api_services", "apixcache_other", "offline_queue"}, keys)
}

func TestMemoryMedium(t *testing.T) {
	exerciseMedium(t, NewMemoryMedium())
}

func TestSQLiteMedium(t *testing.T) {
	m, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer m.Close()

	exerciseMedium(t, m)
}

func TestSQLiteMedium_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	m, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, "offline_queue", `[{"id":"1"}]`))
	require.NoError(t, m.Close())

	m, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer m.Close()
	value, ok, err := m.Get(ctx, "offline_queue")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, value)
}

func TestGormMedium(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{
		GormDialect: "sqlite",
		Path:        filepath.Join(t.TempDir(), "gorm.db"),
	}}
	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)

	m := NewGormMedium(db)
	require.NoError(t, m.Init(context.Background()))
	defer m.Close()

	exerciseMedium(t, m)
}

func TestRebindPostgres(t *testing.T) {
	m := NewSQLMedium(nil, DialectPostgres)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", m.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	m = NewSQLMedium(nil, DialectSQLite)
	assert.Equal(t, "x = ?", m.rebind("x = ?"))
}

func TestFactory(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, &config.Config{Storage: config.StorageConfig{Driver: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &MemoryMedium{}, m)

	m, err = New(ctx, &config.Config{Storage: config.StorageConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "laundry.db"),
	}})
	require.NoError(t, err)
	assert.IsType(t, &SQLMedium{}, m)
	require.NoError(t, m.Close())

	_, err = New(ctx, &config.Config{Storage: config.StorageConfig{Driver: "floppy"}})
	assert.Error(t, err)
}

func TestValkeyMedium(t *testing.T) {
	client, err := valkey.NewClient(valkey.Config{
		Address:        "localhost:6379",
		KeyPrefix:      "azlaundry-test-" + time.Now().Format("150405.000"),
		ConnectTimeout: 500 * time.Millisecond,
	})
	if err != nil {
		t.Skip("No valkey")
	}
	m := NewValkeyMedium(client)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	t.Cleanup(func() {
		keys, _ := m.Keys(ctx, "")
		for _, k := range keys {
			_ = m.Remove(ctx, k)
		}
	})

	exerciseMedium(t, m)
}

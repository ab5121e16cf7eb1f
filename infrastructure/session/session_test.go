package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AzielCF/az-laundry/infrastructure/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveTokenClear(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	store := NewStore(medium, "")

	_, ok := store.Token(ctx)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "tok-1", json.RawMessage(`{"name":"admin"}`)))
	token, ok := store.Token(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	rec, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"admin"}`, string(rec.User))

	cleared := 0
	store.OnClear(func() { cleared++ })
	require.NoError(t, store.Clear(ctx))
	_, ok = store.Token(ctx)
	assert.False(t, ok)
	assert.Equal(t, 1, cleared)
}

func TestStore_UnreadableRecordIsNoSession(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemoryMedium()
	require.NoError(t, medium.Set(ctx, DefaultKey, "{not json"))

	_, ok := NewStore(medium, DefaultKey).Token(ctx)
	assert.False(t, ok)
}

func TestStore_Inspect(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-7",
		Issuer:    "laundry-api",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	store := NewStore(storage.NewMemoryMedium(), "")
	store.now = func() time.Time { return exp.Add(time.Minute) }

	info, err := store.Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", info.Subject)
	assert.Equal(t, "laundry-api", info.Issuer)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.True(t, info.Expired)

	_, err = store.Inspect("not-a-jwt")
	assert.Error(t, err)
}

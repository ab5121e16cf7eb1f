package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AzielCF/az-laundry/domains/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_OnlineAndEmpty(t *testing.T) {
	h := newHarness(true)
	h.cache.Set(context.Background(), "api_services", json.RawMessage(`[]`), time.Minute)

	report := NewHealthService(h.cache, h.queue, h.signal, h.tokens).Check(context.Background())

	assert.Equal(t, health.StatusOk, report.Status)
	assert.True(t, report.Online)
	assert.True(t, report.Authenticated)
	assert.Zero(t, report.Pending)
	assert.Equal(t, 1, report.Cache.Entries)
	assert.Empty(t, report.LastMessage)
}

func TestHealth_DegradedWhileOfflineWithPendingWork(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	id, err := h.queue.Enqueue(ctx, "/orders", "POST", json.RawMessage(`{"total":10}`), nil)
	require.NoError(t, err)
	_, err = h.queue.Enqueue(ctx, "/orders", "POST", json.RawMessage(`{"total":12}`), nil)
	require.NoError(t, err)
	require.NoError(t, h.queue.MarkFailed(ctx, id, "422 rejected"))

	report := NewHealthService(h.cache, h.queue, h.signal, nil).Check(ctx)

	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.False(t, report.Online)
	assert.False(t, report.Authenticated)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 1, report.DeadLettered)
	assert.Contains(t, report.LastMessage, "backend unreachable")
	assert.Contains(t, report.LastMessage, "1 mutation(s) rejected during replay")
}

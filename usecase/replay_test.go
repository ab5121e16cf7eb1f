package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueOrders(t *testing.T, h *harness, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		res, err := h.service.Request(context.Background(), "/orders", domainAPI.Options{
			Method: http.MethodPost,
			Body:   map[string]int{"seq": i},
		})
		require.NoError(t, err)
		require.True(t, res.Queued)
		ids = append(ids, res.QueueID)
	}
	return ids
}

func TestReplay_DrainsInOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	enqueueOrders(t, h, 3)

	h.signal.Set(true)
	h.doer.On(http.MethodPost, testBaseURL+"/orders", http.StatusCreated, `{"success":true}`)

	report, err := NewReplayService(h.queue, h.service, h.signal).Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReplayReport{Replayed: 3}, report)

	reqs := h.doer.Requests()
	require.Len(t, reqs, 3)
	for i, req := range reqs {
		var body map[string]int
		require.NoError(t, json.Unmarshal(req.Body, &body))
		assert.Equal(t, i, body["seq"])
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	}

	n, err := h.queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplay_NetworkFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	ids := enqueueOrders(t, h, 2)

	h.signal.Set(true)
	h.doer.Fail(errors.New("connection refused"))

	report, err := NewReplayService(h.queue, h.service, h.signal).Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Replayed)
	assert.Equal(t, 2, report.Remaining)

	list, err := h.queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids, []string{list[0].ID, list[1].ID})
}

func TestReplay_RejectedMutationIsDeadLettered(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	_, err := h.service.Request(ctx, "/customers", domainAPI.Options{Method: http.MethodPost, Body: `{"phone":"dup"}`})
	require.NoError(t, err)
	enqueueOrders(t, h, 1)

	h.signal.Set(true)
	h.doer.On(http.MethodPost, testBaseURL+"/customers", http.StatusOK, `{"success":false,"message":"Phone already registered"}`)
	h.doer.On(http.MethodPost, testBaseURL+"/orders", http.StatusCreated, `{"success":true}`)

	report, err := NewReplayService(h.queue, h.service, h.signal).Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replayed)
	assert.Equal(t, 1, report.Failed)

	failed, err := h.queue.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "/customers", failed[0].Endpoint)
	assert.Equal(t, "Phone already registered", failed[0].LastError)
}

func TestReplay_OfflineIsNoop(t *testing.T) {
	ctx := context.Background()
	h := newHarness(false)
	enqueueOrders(t, h, 1)

	report, err := NewReplayService(h.queue, h.service, h.signal).Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "offline", report.StoppedBy)
	assert.Equal(t, 1, report.Remaining)
	assert.Empty(t, h.doer.Requests())
}

func TestReplay_AutoReplayOnTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(false)
	enqueueOrders(t, h, 2)
	h.doer.On(http.MethodPost, testBaseURL+"/orders", http.StatusCreated, `{"success":true}`)

	replayer := NewReplayService(h.queue, h.service, h.signal)
	replayer.StartAutoReplay(ctx, time.Hour)

	h.signal.Set(true)
	replayer.Trigger()

	require.Eventually(t, func() bool {
		n, err := h.queue.Len(context.Background())
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	replayer.Stop()
	assert.Len(t, h.doer.Requests(), 2)
}

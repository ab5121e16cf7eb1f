package usecase

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRequester struct {
	endpoints []string
	options   []domainAPI.Options
}

func (r *recordingRequester) Request(_ context.Context, endpoint string, opts domainAPI.Options) (domainAPI.Result, error) {
	r.endpoints = append(r.endpoints, endpoint)
	r.options = append(r.options, opts)
	return domainAPI.Result{Success: true}, nil
}

func TestResources_Routes(t *testing.T) {
	ctx := context.Background()
	req := &recordingRequester{}
	res := NewResources(req, 5*time.Minute)

	_, _ = res.Customers.List(ctx, url.Values{"search": {"jane doe"}})
	_, _ = res.Orders.Get(ctx, "42")
	_, _ = res.Services.Create(ctx, map[string]string{"name": "Dry clean"})
	_, _ = res.Discounts.Update(ctx, "7", map[string]int{"percent": 10})
	_, _ = res.Stations.Delete(ctx, "a/b")
	_, _ = res.AuditLogs.List(ctx, nil)

	assert.Equal(t, []string{
		"/customers?search=jane+doe",
		"/orders/42",
		"/services",
		"/discounts/7",
		"/stations/a%2Fb",
		"/audit-logs",
	}, req.endpoints)
	assert.Equal(t, "", req.options[0].Method)
	assert.Equal(t, http.MethodPost, req.options[2].Method)
	assert.Equal(t, http.MethodPut, req.options[3].Method)
	assert.Equal(t, http.MethodDelete, req.options[4].Method)
}

func TestResources_BackupUsesExtendedTimeout(t *testing.T) {
	req := &recordingRequester{}
	res := NewResources(req, 5*time.Minute)

	_, err := res.Backups.Create(context.Background(), nil)
	require.NoError(t, err)
	_, err = res.Backups.List(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/backups", "/backups"}, req.endpoints)
	assert.Equal(t, 5*time.Minute, req.options[0].Timeout)
	assert.Zero(t, req.options[1].Timeout)
}

func TestResources_PreloadWarmsCriticalData(t *testing.T) {
	ctx := context.Background()
	h := newHarness(true)
	for _, path := range []string{"/customers", "/services", "/discounts"} {
		h.doer.On(http.MethodGet, testBaseURL+path, http.StatusOK, `[]`)
	}

	results := NewResources(h.service, time.Minute).Preload(ctx)
	require.Len(t, results, 4)
	assert.True(t, results[0].OK)
	assert.False(t, results[3].OK, "stations answers 404")
	assert.Equal(t, "/stations", results[3].Endpoint)

	assert.True(t, h.cache.Has(ctx, CacheKey("/services")))
	assert.False(t, h.cache.Has(ctx, CacheKey("/stations")))
}

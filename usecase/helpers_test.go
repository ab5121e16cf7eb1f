package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	"github.com/AzielCF/az-laundry/infrastructure/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingMedium wraps a memory medium and fails writes on demand.
type failingMedium struct {
	*storage.MemoryMedium
	failSet bool
}

func (m *failingMedium) Set(ctx context.Context, key, value string) error {
	if m.failSet {
		return errors.New("quota exceeded")
	}
	return m.MemoryMedium.Set(ctx, key, value)
}

type fakeSignal struct {
	mu     sync.Mutex
	online bool
}

func (s *fakeSignal) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *fakeSignal) Set(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = online
}

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeTokens) Token(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokens) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func (f *fakeTokens) Cleared() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

type fakeNavigator struct {
	mu        sync.Mutex
	current   string
	redirects []string
}

func (n *fakeNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	n.redirects = append(n.redirects, path)
}

func (n *fakeNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.redirects...)
}

type doerFunc func(ctx context.Context, req domainAPI.TransportRequest) (domainAPI.TransportResponse, error)

func (f doerFunc) Do(ctx context.Context, req domainAPI.TransportRequest) (domainAPI.TransportResponse, error) {
	return f(ctx, req)
}

// recordingDoer answers from a fixed table and remembers every request.
type recordingDoer struct {
	mu        sync.Mutex
	responses map[string]domainAPI.TransportResponse
	err       error
	requests  []domainAPI.TransportRequest
}

func newRecordingDoer() *recordingDoer {
	return &recordingDoer{responses: make(map[string]domainAPI.TransportResponse)}
}

func (d *recordingDoer) On(method, url string, status int, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[method+" "+url] = jsonResponse(status, body)
}

func (d *recordingDoer) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *recordingDoer) Do(_ context.Context, req domainAPI.TransportRequest) (domainAPI.TransportResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	if d.err != nil {
		return domainAPI.TransportResponse{}, d.err
	}
	if resp, ok := d.responses[req.Method+" "+req.URL]; ok {
		return resp, nil
	}
	return jsonResponse(http.StatusNotFound, `{"success":false,"message":"not found"}`), nil
}

func (d *recordingDoer) Requests() []domainAPI.TransportRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domainAPI.TransportRequest{}, d.requests...)
}

func jsonResponse(status int, body string) domainAPI.TransportResponse {
	header := make(http.Header)
	header.Set("Content-Type", "application/json; charset=utf-8")
	return domainAPI.TransportResponse{Status: status, Header: header, Body: []byte(body)}
}

const testBaseURL = "http://backend.test/api"

type harness struct {
	medium  *storage.MemoryMedium
	cache   domainCache.ICacheStore
	queue   domainQueue.IOfflineQueue
	clock   *fakeClock
	signal  *fakeSignal
	tokens  *fakeTokens
	nav     *fakeNavigator
	doer    *recordingDoer
	service *RequestService
}

func newHarness(online bool, mutate ...func(*RequestConfig)) *harness {
	h := &harness{
		medium: storage.NewMemoryMedium(),
		clock:  newFakeClock(),
		signal: &fakeSignal{online: online},
		tokens: &fakeTokens{token: "tok"},
		nav:    &fakeNavigator{current: "/orders"},
		doer:   newRecordingDoer(),
	}
	cfg := RequestConfig{
		BaseURL:           testBaseURL,
		Timeout:           time.Second,
		LoginPath:         "/login",
		RedirectDelay:     10 * time.Millisecond,
		LongTTL:           time.Hour,
		ShortTTL:          5 * time.Minute,
		CriticalEndpoints: []string{"/customers", "/services", "/discounts", "/stations"},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	h.service = newHarnessService(h, h.doer, cfg)
	return h
}

func newHarnessService(h *harness, doer domainAPI.IDoer, cfg RequestConfig) *RequestService {
	h.cache = NewCacheStore(h.medium, WithClock(h.clock.Now))
	h.queue = NewOfflineQueue(h.medium, WithQueueClock(h.clock.Now))
	return NewRequestService(RequestDeps{
		Cache:        h.cache,
		Queue:        h.queue,
		Doer:         doer,
		Tokens:       h.tokens,
		Connectivity: h.signal,
		Navigator:    h.nav,
	}, cfg)
}

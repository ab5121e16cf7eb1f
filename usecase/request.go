package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	domainCache "github.com/AzielCF/az-laundry/domains/cache"
	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/AzielCF/az-laundry/validations"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	QueuedMessage = "Request queued for sync when connection is restored"

	snippetLimit = 200
)

// RequestDeps are the collaborators of the orchestrator. Tokens and Navigator
// may be nil.
type RequestDeps struct {
	Cache        domainCache.ICacheStore
	Queue        domainQueue.IOfflineQueue
	Doer         domainAPI.IDoer
	Tokens       domainAPI.ITokenProvider
	Connectivity domainAPI.IConnectivity
	Navigator    domainAPI.INavigator
}

type RequestConfig struct {
	BaseURL           string
	Timeout           time.Duration
	AuthPrefix        string
	LoginPath         string
	RedirectDelay     time.Duration
	LongTTL           time.Duration
	ShortTTL          time.Duration
	CriticalEndpoints []string
	// DedupeRefresh collapses concurrent background refreshes of one key.
	DedupeRefresh  bool
	RefreshTimeout time.Duration
}

// RequestService is the single entry point for backend calls. Reads are
// served cache-first, writes go live or into the offline queue.
type RequestService struct {
	deps     RequestDeps
	cfg      RequestConfig
	critical map[string]struct{}

	group       singleflight.Group
	redirecting atomic.Bool

	// mu orders closed against pending.Add so nothing starts after Close
	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

var _ domainAPI.IRequester = (*RequestService)(nil)

func NewRequestService(deps RequestDeps, cfg RequestConfig) *RequestService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = cfg.Timeout
	}
	if cfg.LongTTL <= 0 {
		cfg.LongTTL = time.Hour
	}
	if cfg.ShortTTL <= 0 {
		cfg.ShortTTL = 5 * time.Minute
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.AuthPrefix == "" {
		cfg.AuthPrefix = "/auth"
	}

	critical := make(map[string]struct{}, len(cfg.CriticalEndpoints))
	for _, e := range cfg.CriticalEndpoints {
		critical[BasePath(e)] = struct{}{}
	}

	return &RequestService{
		deps:     deps,
		cfg:      cfg,
		critical: critical,
	}
}

func (s *RequestService) Request(ctx context.Context, endpoint string, opts domainAPI.Options) (domainAPI.Result, error) {
	if err := validations.ValidateRequest(ctx, endpoint, opts); err != nil {
		return domainAPI.Result{}, err
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method == http.MethodGet {
		return s.read(ctx, endpoint, opts)
	}
	return s.write(ctx, endpoint, method, opts)
}

// Send performs a live call that bypasses both the cache and the queue. The
// replayer uses it to flush captured mutations.
func (s *RequestService) Send(ctx context.Context, m domainQueue.QueuedMutation) (domainAPI.Result, error) {
	res, _, err := s.call(ctx, m.Endpoint, m.Method, m.Body, m.Headers, 0)
	if err != nil {
		return res, err
	}
	return res, nil
}

// Wait blocks until every background refresh and pending redirect finished.
func (s *RequestService) Wait() {
	s.pending.Wait()
}

// Close stops scheduling background refreshes and drains the running ones.
func (s *RequestService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.pending.Wait()
}

// track registers one unit of background work unless Close has started.
func (s *RequestService) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.pending.Add(1)
	return true
}

// IsCritical reports whether endpoint belongs to the long-TTL reference data.
func (s *RequestService) IsCritical(endpoint string) bool {
	_, ok := s.critical[BasePath(endpoint)]
	return ok
}

func (s *RequestService) read(ctx context.Context, endpoint string, opts domainAPI.Options) (domainAPI.Result, error) {
	if !s.deps.Connectivity.IsOnline() {
		if res, ok := s.fromCache(ctx, endpoint); ok {
			logrus.Debugf("[REQUEST] offline, serving %s from cache", endpoint)
			return res, nil
		}
		return domainAPI.Result{}, pkgError.NoConnectionError{Endpoint: endpoint}
	}

	if !opts.Fresh {
		if res, ok := s.fromCache(ctx, endpoint); ok {
			s.refresh(ctx, endpoint, opts)
			return res, nil
		}
	}

	res, raw, err := s.call(ctx, endpoint, http.MethodGet, nil, opts.Headers, opts.Timeout)
	if err != nil {
		if pkgError.IsNetworkClass(err) {
			if cached, ok := s.fromCache(ctx, endpoint); ok {
				logrus.WithError(err).Warnf("[REQUEST] live read of %s failed, serving cached copy", endpoint)
				return cached, nil
			}
		}
		return domainAPI.Result{}, err
	}
	s.store(ctx, endpoint, raw)
	return res, nil
}

func (s *RequestService) write(ctx context.Context, endpoint, method string, opts domainAPI.Options) (domainAPI.Result, error) {
	body, err := encodeBody(opts.Body)
	if err != nil {
		return domainAPI.Result{}, err
	}

	if !s.isAuthEndpoint(endpoint) && !s.deps.Connectivity.IsOnline() {
		id, err := s.deps.Queue.Enqueue(ctx, endpoint, method, body, opts.Headers)
		if err != nil {
			return domainAPI.Result{}, err
		}
		return domainAPI.Result{
			Success: true,
			Message: QueuedMessage,
			Queued:  true,
			QueueID: id,
		}, nil
	}

	res, _, err := s.call(ctx, endpoint, method, body, opts.Headers, opts.Timeout)
	if err != nil {
		return domainAPI.Result{}, err
	}
	s.refreshAfterWrite(ctx, endpoint, method, opts.Headers)
	return res, nil
}

// fromCache looks up the exact key, then the canonical alias for critical
// endpoints.
func (s *RequestService) fromCache(ctx context.Context, endpoint string) (domainAPI.Result, bool) {
	keys := []string{CacheKey(endpoint)}
	if s.IsCritical(endpoint) {
		if alias := CacheKey(BasePath(endpoint)); alias != keys[0] {
			keys = append(keys, alias)
		}
	}

	for _, key := range keys {
		raw, ok := s.deps.Cache.Get(ctx, key)
		if !ok {
			continue
		}
		res, err := Normalize(raw)
		if err != nil {
			logrus.WithError(err).Warnf("[REQUEST] unusable cached value under %s", key)
			continue
		}
		return res, true
	}
	return domainAPI.Result{}, false
}

func (s *RequestService) store(ctx context.Context, endpoint string, raw []byte) {
	if len(raw) == 0 {
		return
	}
	key := CacheKey(endpoint)
	ttl := s.cfg.ShortTTL
	critical := s.IsCritical(endpoint)
	if critical {
		ttl = s.cfg.LongTTL
	}

	s.deps.Cache.Set(ctx, key, raw, ttl)
	if critical {
		if alias := CacheKey(BasePath(endpoint)); alias != key {
			s.deps.Cache.Set(ctx, alias, raw, ttl)
		}
	}
}

// refreshAfterWrite re-fetches the cached reads a write may have changed.
// The collection entry is never evicted: it is also the offline alias of
// critical data. A deleted item's own entry is dropped.
func (s *RequestService) refreshAfterWrite(ctx context.Context, endpoint, method string, headers map[string]string) {
	opts := domainAPI.Options{Headers: headers}
	resource := ResourcePath(endpoint)

	if item := BasePath(endpoint); item != resource {
		if method == http.MethodDelete {
			s.deps.Cache.Remove(ctx, CacheKey(item))
		} else if s.deps.Cache.Has(ctx, CacheKey(item)) {
			s.refresh(ctx, item, opts)
		}
	}
	if s.deps.Cache.Has(ctx, CacheKey(resource)) {
		s.refresh(ctx, resource, opts)
	}
}

// refresh re-fetches endpoint in the background. The caller never waits for
// it and its outcome only touches the cache; concurrent refreshes race and
// the last writer wins.
func (s *RequestService) refresh(parent context.Context, endpoint string, opts domainAPI.Options) {
	if !s.track() {
		return
	}
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.RefreshTimeout)
		defer cancel()

		run := func() (any, error) {
			_, raw, err := s.call(ctx, endpoint, http.MethodGet, nil, opts.Headers, opts.Timeout)
			if err != nil {
				return nil, err
			}
			s.store(ctx, endpoint, raw)
			return nil, nil
		}

		var err error
		if s.cfg.DedupeRefresh {
			_, err, _ = s.group.Do(CacheKey(endpoint), run)
		} else {
			_, err = run()
		}
		if err != nil {
			logrus.WithError(err).Debugf("[REQUEST] background refresh of %s failed", endpoint)
		}
	}()
}

// call runs one live exchange and interprets the response. It returns the
// normalized result and the raw body for caching.
func (s *RequestService) call(ctx context.Context, endpoint, method string, body json.RawMessage, headers map[string]string, timeout time.Duration) (domainAPI.Result, []byte, error) {
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	header := make(http.Header)
	header.Set("Accept", "application/json")
	if len(body) > 0 {
		header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		header.Set(k, v)
	}

	token, hasToken := "", false
	if s.deps.Tokens != nil {
		token, hasToken = s.deps.Tokens.Token(ctx)
	}
	if hasToken {
		header.Set("Authorization", "Bearer "+token)
	} else {
		logrus.Debugf("[REQUEST] no auth token available for %s %s", method, endpoint)
	}

	resp, err := s.deps.Doer.Do(callCtx, domainAPI.TransportRequest{
		Method: method,
		URL:    strings.TrimRight(s.cfg.BaseURL, "/") + endpoint,
		Header: header,
		Body:   body,
	})
	if err != nil {
		var tooLarge pkgError.ResponseTooLargeError
		switch {
		case errors.As(err, &tooLarge):
			return domainAPI.Result{}, nil, tooLarge
		case errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return domainAPI.Result{}, nil, pkgError.TimeoutError{Endpoint: endpoint, Timeout: timeout}
		case errors.Is(ctx.Err(), context.Canceled):
			return domainAPI.Result{}, nil, ctx.Err()
		}
		return domainAPI.Result{}, nil, pkgError.NetworkError{Endpoint: endpoint, Err: err}
	}

	switch resp.Status {
	case http.StatusUnauthorized:
		return domainAPI.Result{}, nil, s.unauthorized(ctx, endpoint, hasToken, resp.Body)
	case http.StatusForbidden:
		return domainAPI.Result{}, nil, pkgError.ForbiddenError{Message: errorMessage(resp.Body)}
	}

	contentType := resp.Header.Get("Content-Type")
	if len(strings.TrimSpace(string(resp.Body))) > 0 && !isJSON(contentType) {
		return domainAPI.Result{}, nil, nonJSON(endpoint, resp.Status, contentType, resp.Body)
	}

	if resp.Status < 200 || resp.Status > 299 {
		return domainAPI.Result{}, nil, pkgError.HTTPError{
			Status:  resp.Status,
			Message: errorMessage(resp.Body),
			Body:    resp.Body,
		}
	}

	res, err := Normalize(resp.Body)
	if err != nil {
		return domainAPI.Result{}, nil, nonJSON(endpoint, resp.Status, contentType, resp.Body)
	}
	if !res.Success {
		return domainAPI.Result{}, nil, pkgError.AppError{Message: res.Message}
	}
	return res, resp.Body, nil
}

func (s *RequestService) unauthorized(ctx context.Context, endpoint string, hadToken bool, body []byte) error {
	msg := errorMessage(body)
	if !hadToken {
		return pkgError.AuthError{Message: msg}
	}

	logrus.Warnf("[REQUEST] %s rejected the session token, clearing session", endpoint)
	if err := s.deps.Tokens.Clear(ctx); err != nil {
		logrus.WithError(err).Error("[REQUEST] failed to clear session")
	}
	s.scheduleLoginRedirect()
	return pkgError.AuthError{Message: msg, SessionCleared: true}
}

// scheduleLoginRedirect defers the redirect so in-flight work can settle.
// Concurrent 401s collapse into a single redirect.
func (s *RequestService) scheduleLoginRedirect() {
	nav := s.deps.Navigator
	if nav == nil || nav.CurrentPath() == s.cfg.LoginPath {
		return
	}
	if !s.redirecting.CompareAndSwap(false, true) {
		return
	}
	if !s.track() {
		s.redirecting.Store(false)
		return
	}
	time.AfterFunc(s.cfg.RedirectDelay, func() {
		defer s.pending.Done()
		defer s.redirecting.Store(false)
		if nav.CurrentPath() == s.cfg.LoginPath {
			return
		}
		nav.Redirect(s.cfg.LoginPath)
	})
}

func (s *RequestService) isAuthEndpoint(endpoint string) bool {
	base := BasePath(endpoint)
	return base == s.cfg.AuthPrefix || strings.HasPrefix(base, s.cfg.AuthPrefix+"/")
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func nonJSON(endpoint string, status int, contentType string, body []byte) error {
	snippet := string(body)
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit]
	}
	return pkgError.NonJSONError{
		Endpoint:    endpoint,
		Status:      status,
		ContentType: contentType,
		Snippet:     snippet,
	}
}

// encodeBody serializes a request body. Byte slices and strings are taken as
// pre-serialized JSON.
func encodeBody(body any) (json.RawMessage, error) {
	var data []byte
	switch v := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, pkgError.ValidationError(fmt.Sprintf("body is not serializable: %v", err))
		}
		return encoded, nil
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, pkgError.ValidationError("body must be valid JSON")
	}
	return data, nil
}

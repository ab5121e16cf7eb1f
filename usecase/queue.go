package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	domainQueue "github.com/AzielCF/az-laundry/domains/queue"
	domainStorage "github.com/AzielCF/az-laundry/domains/storage"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
	"github.com/AzielCF/az-laundry/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueKey       = "offline_queue"
	DefaultFailedQueueKey = "offline_queue_failed"
)

// transportHeaders are set by the transport on replay and never captured.
var transportHeaders = map[string]struct{}{
	"authorization":  {},
	"content-type":   {},
	"content-length": {},
}

type offlineQueue struct {
	medium    domainStorage.IMedium
	key       string
	failedKey string
	now       func() time.Time

	// mu serializes read-modify-write of the persisted list
	mu        sync.Mutex
	listeners []func(pending int)
}

type QueueOption func(*offlineQueue)

func WithQueueKeys(key, failedKey string) QueueOption {
	return func(q *offlineQueue) {
		if key != "" {
			q.key = key
		}
		if failedKey != "" {
			q.failedKey = failedKey
		}
	}
}

func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *offlineQueue) {
		q.now = now
	}
}

func NewOfflineQueue(medium domainStorage.IMedium, opts ...QueueOption) domainQueue.IOfflineQueue {
	q := &offlineQueue{
		medium:    medium,
		key:       DefaultQueueKey,
		failedKey: DefaultFailedQueueKey,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *offlineQueue) Enqueue(ctx context.Context, endpoint, method string, body json.RawMessage, headers map[string]string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", pkgError.QueueCaptureError{Endpoint: endpoint, Err: err}
	}

	m := domainQueue.QueuedMutation{
		ID:        id.String(),
		Endpoint:  endpoint,
		Method:    strings.ToUpper(method),
		Body:      body,
		Headers:   captureHeaders(headers),
		CreatedAt: q.now().UTC(),
	}
	if err := validations.ValidateMutation(ctx, m); err != nil {
		return "", err
	}

	q.mu.Lock()
	list, err := q.read(ctx, q.key)
	if err != nil {
		q.mu.Unlock()
		return "", pkgError.QueueCaptureError{Endpoint: endpoint, Err: err}
	}
	list = append(list, m)
	if err := q.write(ctx, q.key, list); err != nil {
		q.mu.Unlock()
		logrus.WithError(err).Errorf("[QUEUE] failed to persist %s %s", m.Method, endpoint)
		return "", pkgError.QueueCaptureError{Endpoint: endpoint, Err: err}
	}
	pending := len(list)
	q.mu.Unlock()

	logrus.Infof("[QUEUE] queued %s %s as %s (%d pending)", m.Method, endpoint, m.ID, pending)
	q.notify(pending)
	return m.ID, nil
}

func (q *offlineQueue) List(ctx context.Context) ([]domainQueue.QueuedMutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read(ctx, q.key)
}

func (q *offlineQueue) Len(ctx context.Context) (int, error) {
	list, err := q.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (q *offlineQueue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	list, err := q.read(ctx, q.key)
	if err != nil {
		q.mu.Unlock()
		return err
	}
	kept := list[:0]
	found := false
	for _, m := range list {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		q.mu.Unlock()
		return pkgError.NotFoundError(fmt.Sprintf("queued mutation %s not found", id))
	}
	if err := q.write(ctx, q.key, kept); err != nil {
		q.mu.Unlock()
		return fmt.Errorf("failed to persist queue: %w", err)
	}
	pending := len(kept)
	q.mu.Unlock()

	q.notify(pending)
	return nil
}

// MarkFailed moves a mutation to the dead-letter list. Its position in the
// live queue is released so later mutations can be replayed.
func (q *offlineQueue) MarkFailed(ctx context.Context, id, reason string) error {
	q.mu.Lock()
	list, err := q.read(ctx, q.key)
	if err != nil {
		q.mu.Unlock()
		return err
	}

	var (
		failed domainQueue.QueuedMutation
		found  bool
		kept   []domainQueue.QueuedMutation
	)
	for _, m := range list {
		if m.ID == id && !found {
			failed, found = m, true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		q.mu.Unlock()
		return pkgError.NotFoundError(fmt.Sprintf("queued mutation %s not found", id))
	}

	failed.Attempts++
	failed.LastError = reason

	dead, err := q.read(ctx, q.failedKey)
	if err != nil {
		q.mu.Unlock()
		return err
	}
	// dead-letter first so the mutation is never in neither list
	if err := q.write(ctx, q.failedKey, append(dead, failed)); err != nil {
		q.mu.Unlock()
		return fmt.Errorf("failed to persist dead-letter list: %w", err)
	}
	if err := q.write(ctx, q.key, kept); err != nil {
		q.mu.Unlock()
		return fmt.Errorf("failed to persist queue: %w", err)
	}
	pending := len(kept)
	q.mu.Unlock()

	logrus.Warnf("[QUEUE] %s %s moved to dead-letter: %s", failed.Method, failed.Endpoint, reason)
	q.notify(pending)
	return nil
}

func (q *offlineQueue) Failed(ctx context.Context) ([]domainQueue.QueuedMutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read(ctx, q.failedKey)
}

func (q *offlineQueue) Clear(ctx context.Context) error {
	q.mu.Lock()
	if err := q.medium.Remove(ctx, q.key); err != nil {
		q.mu.Unlock()
		return err
	}
	q.mu.Unlock()
	q.notify(0)
	return nil
}

func (q *offlineQueue) OnChange(fn func(pending int)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

func (q *offlineQueue) notify(pending int) {
	q.mu.Lock()
	listeners := append([]func(int){}, q.listeners...)
	q.mu.Unlock()
	for _, fn := range listeners {
		fn(pending)
	}
}

func (q *offlineQueue) read(ctx context.Context, key string) ([]domainQueue.QueuedMutation, error) {
	raw, ok, err := q.medium.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []domainQueue.QueuedMutation{}, nil
	}
	var list []domainQueue.QueuedMutation
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return list, nil
}

func (q *offlineQueue) write(ctx context.Context, key string, list []domainQueue.QueuedMutation) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return q.medium.Set(ctx, key, string(data))
}

func captureHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, managed := transportHeaders[strings.ToLower(k)]; managed {
			continue
		}
		out[http.CanonicalHeaderKey(k)] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

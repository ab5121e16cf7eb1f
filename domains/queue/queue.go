package queue

import (
	"context"
	"encoding/json"
	"time"
)

// QueuedMutation is a write captured while the device was offline.
type QueuedMutation struct {
	ID        string            `json:"id"`
	Endpoint  string            `json:"endpoint"`
	Method    string            `json:"method"`
	Body      json.RawMessage   `json:"body,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Attempts  int               `json:"attempts,omitempty"`
	LastError string            `json:"last_error,omitempty"`
}

// IOfflineQueue is a durable FIFO of pending mutations. Enqueue errors are
// never swallowed.
type IOfflineQueue interface {
	Enqueue(ctx context.Context, endpoint, method string, body json.RawMessage, headers map[string]string) (string, error)
	List(ctx context.Context) ([]QueuedMutation, error)
	Len(ctx context.Context) (int, error)
	Remove(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	Failed(ctx context.Context) ([]QueuedMutation, error)
	Clear(ctx context.Context) error
	OnChange(fn func(pending int))
}

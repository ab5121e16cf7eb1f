package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Options describes one backend call.
type Options struct {
	Method  string
	Body    any // marshalled to JSON unless already []byte or json.RawMessage
	Headers map[string]string
	// Timeout overrides the default transport timeout when non-zero.
	Timeout time.Duration
	// Fresh skips cache-first for reads. A network failure still falls back
	// to the cache.
	Fresh bool
}

// Result is the normalized envelope handed to every caller, whether it came
// from the network, the cache or the offline queue.
type Result struct {
	Success bool                       `json:"success"`
	Data    json.RawMessage            `json:"data,omitempty"`
	Message string                     `json:"message,omitempty"`
	Queued  bool                       `json:"queued,omitempty"`
	QueueID string                     `json:"queueId,omitempty"`
	Meta    map[string]json.RawMessage `json:"meta,omitempty"`
}

// Decode unmarshals Data into dest.
func (r Result) Decode(dest any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, dest)
}

// IRequester is the single entry point for backend calls.
type IRequester interface {
	Request(ctx context.Context, endpoint string, opts Options) (Result, error)
}

// ITokenProvider returns the bearer token of the persisted session, if any.
type ITokenProvider interface {
	Token(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// IConnectivity is polled before every read and write decision.
type IConnectivity interface {
	IsOnline() bool
}

// INavigator is the hook used to send the user back to the login entry point.
type INavigator interface {
	CurrentPath() string
	Redirect(path string)
}

// TransportRequest is a fully resolved HTTP call.
type TransportRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type TransportResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// IDoer performs a single HTTP exchange. The context carries the timeout.
type IDoer interface {
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
	pkgError "github.com/AzielCF/az-laundry/pkg/error"
)

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 32 << 20

// HTTPDoer performs exchanges over net/http. Timeouts come from the request
// context, so the client itself carries none.
type HTTPDoer struct {
	client *http.Client
	limit  int64
}

var _ domainAPI.IDoer = (*HTTPDoer)(nil)

func NewHTTPDoer(client *http.Client) *HTTPDoer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPDoer{client: client, limit: maxBodySize}
}

func (d *HTTPDoer) Do(ctx context.Context, r domainAPI.TransportRequest) (domainAPI.TransportResponse, error) {
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return domainAPI.TransportResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range r.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return domainAPI.TransportResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.limit+1))
	if err != nil {
		return domainAPI.TransportResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > d.limit {
		return domainAPI.TransportResponse{}, pkgError.ResponseTooLargeError{URL: r.URL, Limit: d.limit}
	}

	return domainAPI.TransportResponse{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

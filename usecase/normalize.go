package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	domainAPI "github.com/AzielCF/az-laundry/domains/api"
)

// CacheKey derives the cache key of an endpoint. Plain paths (alphanumerics
// and '/', rooted at '/') keep the "api_services" form. Anything else collapses
// to '_' behind an "apih<digest>" marker, a prefix no plain key can start
// with, so "/a?b=c" and "/a/b/c" never share a key.
func CacheKey(endpoint string) string {
	var b strings.Builder
	plain := strings.HasPrefix(endpoint, "/")
	for _, r := range endpoint {
		switch {
		case isAlnum(r):
			b.WriteRune(r)
		case r == '/':
			b.WriteByte('_')
		default:
			plain = false
			b.WriteByte('_')
		}
	}
	if plain {
		return "api" + b.String()
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(endpoint))
	return fmt.Sprintf("apih%08x%s", h.Sum32(), b.String())
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// BasePath strips the query string and fragment.
func BasePath(endpoint string) string {
	if i := strings.IndexAny(endpoint, "?#"); i >= 0 {
		endpoint = endpoint[:i]
	}
	if len(endpoint) > 1 {
		endpoint = strings.TrimSuffix(endpoint, "/")
	}
	return endpoint
}

// ResourcePath is the first path segment, "/orders/42" -> "/orders".
func ResourcePath(endpoint string) string {
	base := BasePath(endpoint)
	if len(base) <= 1 {
		return base
	}
	if i := strings.IndexByte(base[1:], '/'); i >= 0 {
		return base[:i+1]
	}
	return base
}

var envelopeKeys = map[string]struct{}{
	"success": {},
	"data":    {},
	"message": {},
}

// Normalize turns any backend payload into the single result shape handed to
// callers. Bare values are wrapped; envelopes pass through with success
// defaulting to true.
func Normalize(raw []byte) (domainAPI.Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domainAPI.Result{Success: true}, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return domainAPI.Result{}, fmt.Errorf("invalid JSON payload: %w", err)
	}
	data := compact.Bytes()

	if data[0] != '{' {
		return domainAPI.Result{Success: true, Data: data}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return domainAPI.Result{}, fmt.Errorf("invalid JSON object: %w", err)
	}
	_, hasSuccess := fields["success"]
	_, hasData := fields["data"]
	if !hasSuccess && !hasData {
		return domainAPI.Result{Success: true, Data: data}, nil
	}

	res := domainAPI.Result{Success: true}
	if hasSuccess {
		var ok bool
		if err := json.Unmarshal(fields["success"], &ok); err == nil {
			res.Success = ok
		}
	}
	if hasData && string(fields["data"]) != "null" {
		res.Data = fields["data"]
	}
	if msg, ok := fields["message"]; ok {
		_ = json.Unmarshal(msg, &res.Message)
	}
	for k, v := range fields {
		if _, known := envelopeKeys[k]; known {
			continue
		}
		if res.Meta == nil {
			res.Meta = make(map[string]json.RawMessage)
		}
		res.Meta[k] = v
	}
	return res, nil
}

// errorMessage pulls a display message out of an error body, if any.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

package error

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// NoConnectionError means the device is offline and nothing usable is cached
// for the requested endpoint.
type NoConnectionError struct {
	Endpoint string
}

func (err NoConnectionError) Error() string {
	return fmt.Sprintf("No internet connection and no cached data available for %s", err.Endpoint)
}

func (err NoConnectionError) ErrCode() string {
	return "NO_CONNECTION"
}

func (err NoConnectionError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// TimeoutError is returned when a live call exceeds its timeout.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (err TimeoutError) Error() string {
	return fmt.Sprintf("Request timeout after %s", err.Timeout)
}

func (err TimeoutError) ErrCode() string {
	return "TIMEOUT"
}

func (err TimeoutError) StatusCode() int {
	return http.StatusGatewayTimeout
}

// NetworkError wraps a transport-level failure (DNS, refused connection, reset).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (err NetworkError) Error() string {
	return fmt.Sprintf("Network error while calling %s: %v", err.Endpoint, err.Err)
}

func (err NetworkError) Unwrap() error {
	return err.Err
}

func (err NetworkError) ErrCode() string {
	return "NETWORK_ERROR"
}

func (err NetworkError) StatusCode() int {
	return http.StatusBadGateway
}

// NonJSONError is returned when the server answers with something other than
// JSON, typically an HTML error page from a proxy.
type NonJSONError struct {
	Endpoint    string
	Status      int
	ContentType string
	Snippet     string
}

func (err NonJSONError) Error() string {
	return fmt.Sprintf("Server returned non-JSON response (status %d, content-type %q) for %s", err.Status, err.ContentType, err.Endpoint)
}

func (err NonJSONError) ErrCode() string {
	return "NON_JSON_RESPONSE"
}

func (err NonJSONError) StatusCode() int {
	return http.StatusBadGateway
}

// AuthError is a 401 from the backend. SessionCleared reports whether the
// stored session was invalidated because of it.
type AuthError struct {
	Message        string
	SessionCleared bool
}

func (err AuthError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return "Authentication required"
}

func (err AuthError) ErrCode() string {
	return "UNAUTHORIZED"
}

func (err AuthError) StatusCode() int {
	return http.StatusUnauthorized
}

// ForbiddenError is a 403: the session is valid but lacks permission.
type ForbiddenError struct {
	Message string
}

func (err ForbiddenError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return "You do not have permission to perform this action"
}

func (err ForbiddenError) ErrCode() string {
	return "FORBIDDEN"
}

func (err ForbiddenError) StatusCode() int {
	return http.StatusForbidden
}

// HTTPError is any other non-2xx response.
type HTTPError struct {
	Status  int
	Message string
	Body    []byte
}

func (err HTTPError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", err.Status)
}

func (err HTTPError) ErrCode() string {
	return "HTTP_ERROR"
}

func (err HTTPError) StatusCode() int {
	return err.Status
}

// AppError is a 2xx response whose body carries "success": false.
type AppError struct {
	Message string
}

func (err AppError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return "Request failed"
}

func (err AppError) ErrCode() string {
	return "APPLICATION_ERROR"
}

func (err AppError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// QueueCaptureError means a mutation could not be persisted to the offline
// queue. It must always reach the caller.
type QueueCaptureError struct {
	Endpoint string
	Err      error
}

func (err QueueCaptureError) Error() string {
	return fmt.Sprintf("Failed to queue offline request for %s: %v", err.Endpoint, err.Err)
}

func (err QueueCaptureError) Unwrap() error {
	return err.Err
}

func (err QueueCaptureError) ErrCode() string {
	return "QUEUE_CAPTURE_ERROR"
}

func (err QueueCaptureError) StatusCode() int {
	return http.StatusInternalServerError
}

// ResponseTooLargeError is a response body over the transport read limit.
// Nothing is returned in place of the truncated body.
type ResponseTooLargeError struct {
	URL   string
	Limit int64
}

func (err ResponseTooLargeError) Error() string {
	return fmt.Sprintf("Response from %s is larger than %d bytes", err.URL, err.Limit)
}

func (err ResponseTooLargeError) ErrCode() string {
	return "RESPONSE_TOO_LARGE"
}

func (err ResponseTooLargeError) StatusCode() int {
	return http.StatusBadGateway
}

// ValidationError carries ozzo validation output.
type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// IsNetworkClass reports whether err is a failure that a cached copy can
// stand in for (network or timeout).
func IsNetworkClass(err error) bool {
	var netErr NetworkError
	var timeoutErr TimeoutError
	return errors.As(err, &netErr) || errors.As(err, &timeoutErr)
}

// IsAuth reports whether err is a 401 from the backend.
func IsAuth(err error) bool {
	var authErr AuthError
	return errors.As(err, &authErr)
}

// Status extracts the HTTP-ish status for err, defaulting to 500.
func Status(err error) int {
	var generic GenericError
	if errors.As(err, &generic) {
		return generic.StatusCode()
	}
	return http.StatusInternalServerError
}

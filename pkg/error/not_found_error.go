package error

import "net/http"

// NotFoundError names a cache entry or queued mutation that is not there.
// The message is the whole error, such as "queued mutation <id> not found",
// and the REST layer answers it with 404.
type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

package error

// GenericError is implemented by every error the client core surfaces to a
// caller. Messages are safe to show to a user as-is.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

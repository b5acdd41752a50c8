package auth

import "net/http"

// Error is a terminal authentication failure carrying the HTTP status
// the boundary layer should answer with, plus optional detail fields for
// the response envelope.
type Error struct {
	Status  int
	Message string
	Data    map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func newErrorWithData(status int, message string, data map[string]interface{}) *Error {
	return &Error{Status: status, Message: message, Data: data}
}

// Common terminal errors. Credential failures stay deliberately generic
// so responses never reveal whether an account exists.
var (
	errInvalidCredentials = newError(http.StatusUnauthorized, "Invalid credentials")
	errRateLimited        = newError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
	errInternal           = newError(http.StatusInternalServerError, "Something went wrong. Please try again.")
)

package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the auth service. Message carries the
// server-provided error text when the body had one, otherwise the HTTP
// status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// apiErrorBody is the error envelope the auth service uses.
type apiErrorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func newAPIError(statusCode int, body apiErrorBody) *APIError {
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}

	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	return &APIError{StatusCode: statusCode, Message: msg}
}

// statusOf returns the HTTP status of err, or 0 for non-API errors
// (network failures, cancelled contexts).
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 response.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	return statusOf(err) >= http.StatusInternalServerError
}

// ErrorMessage extracts the server-provided message from err, falling back
// to the error's own text. Used by callers to surface domain 4xx failures.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return err.Error()
}

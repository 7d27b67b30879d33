package randomuser

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	// ErrConfigRequired is returned by New when cfg is nil.
	ErrConfigRequired = errors.New("config is required")
	// ErrInvalidCount is returned when fewer than one user is requested.
	ErrInvalidCount = errors.New("user count must be positive")
	// ErrMalformedResponse is returned when the body has no results array.
	ErrMalformedResponse = errors.New("malformed response")
)

// maxErrorBody bounds how much of an error body is kept in APIError.
const maxErrorBody = 512

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return "random user api error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsRateLimited returns true if the API rejected the request for rate limiting.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(statusCode int, body []byte) *APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &APIError{StatusCode: statusCode, Body: string(body)}
}

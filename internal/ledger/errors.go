package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable indicates the ledger could not be reached or failed
	// with a server error.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("ledger request timed out")

	// ErrRejected indicates the ledger refused the request (4xx).
	ErrRejected = errors.New("ledger rejected request")
)

// APIError carries a non-2xx response. It unwraps to ErrRejected for 4xx
// statuses and ErrUnavailable otherwise.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	if e.Status >= 400 && e.Status < 500 {
		return ErrRejected
	}
	return ErrUnavailable
}

// IsValidationError reports whether err is a 400 or 422 response.
func IsValidationError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

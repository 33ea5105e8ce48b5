package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
)

// APIError is a backend-reported failure. Message carries the server's
// error text verbatim; Kind is one of the sentinel errors above so callers
// can branch with errors.Is.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// newAPIError classifies an HTTP failure status into the error taxonomy.
func newAPIError(statusCode int, message string) *APIError {
	var kind error
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = ErrValidation
	case http.StatusUnauthorized:
		kind = ErrAuthentication
	case http.StatusForbidden:
		kind = ErrAuthorization
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusConflict:
		kind = ErrConflict
	default:
		kind = errors.New("server error")
	}
	return &APIError{Kind: kind, StatusCode: statusCode, Message: message}
}

// IsAuthFailure reports whether err is an expired or invalid credential
// error, the class that must trigger a global session teardown.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

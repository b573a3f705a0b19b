package data

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMutationDisabled = errors.New("mutation disabled")
)

// ErrorToStatusCode maps err (or any error it wraps) onto a status code
func ErrorToStatusCode(err error) int {
	switch {
	default:
		return http.StatusInternalServerError
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrMutationDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
}

// StatusCodeToError is the inverse of ErrorToStatusCode, it returns nil for
// codes that don't map onto a known error
func StatusCodeToError(statusCode int) error {
	switch statusCode {
	default:
		return nil
	case http.StatusNotFound:
		return ErrEmployeeNotFound
	case http.StatusBadRequest:
		return ErrValidationFailed
	case http.StatusForbidden:
		return ErrMutationDisabled
	case http.StatusServiceUnavailable:
		return ErrStoreUnavailable
	}
}

package paramsearch

import (
	"errors"

	"github.com/kailas-cloud/paramsearch/internal/domain"
)

// Sentinel errors, matchable with errors.Is.
var (
	ErrInvalidValue     = domain.ErrInvalidValue
	ErrIndexNotFound    = domain.ErrIndexNotFound
	ErrInvalidIndexName = domain.ErrInvalidIndexName
	ErrSearchFailed     = domain.ErrSearchFailed
)

// ParameterError reports the parameter whose value could not be coerced.
type ParameterError = domain.ParameterError

// InvalidParameter returns the offending parameter key of err, if any.
func InvalidParameter(err error) (string, bool) {
	var pe *ParameterError
	if errors.As(err, &pe) {
		return pe.Key, true
	}
	return "", false
}

// errorStatus labels operation failures for the client metrics.
func errorStatus(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIndexName):
		return "invalid_index_name"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrIndexNotFound):
		return "index_not_found"
	case errors.Is(err, ErrSearchFailed):
		return "search_failed"
	default:
		return "error"
	}
}

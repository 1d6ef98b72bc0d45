package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue signals a parameter value that could not be coerced.
	ErrInvalidValue = errors.New("invalid value")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrInvalidIndexName signals an index name with disallowed characters.
	ErrInvalidIndexName = errors.New("invalid index name")
	// ErrSearchFailed signals an execution failure in the search backend.
	ErrSearchFailed = errors.New("search failed")
)

// ParameterError wraps ErrInvalidValue with the offending parameter key.
type ParameterError struct {
	Key string
	Err error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: parameter %q: %v", ErrInvalidValue.Error(), e.Key, e.Err)
}

func (e *ParameterError) Unwrap() []error { return []error{ErrInvalidValue, e.Err} }

// NewParameterError creates a parameter error for key.
func NewParameterError(key string, err error) error {
	return &ParameterError{Key: key, Err: err}
}

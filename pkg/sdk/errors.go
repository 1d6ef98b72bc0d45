package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidIndexName = errors.New("invalid index name")
	ErrIndexNotFound    = errors.New("index not found")
	ErrBadRequest       = errors.New("bad request")
	ErrServer           = errors.New("server error")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// Parameter is the offending parameter key for invalid_value errors.
	Parameter string
}

func (e *APIError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("paramsearch: %d %s: %s (parameter %q)", e.StatusCode, e.Code, e.Message, e.Parameter)
	}
	return fmt.Sprintf("paramsearch: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps the error code to a sentinel.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidValue:
		return e.Code == "invalid_value"
	case ErrInvalidIndexName:
		return e.Code == "invalid_index_name"
	case ErrIndexNotFound:
		return e.Code == "index_not_found"
	case ErrBadRequest:
		return e.StatusCode >= 400 && e.StatusCode < 500
	case ErrServer:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// knownCodes bounds the status label of the SDK metrics to codes the server emits.
var knownCodes = map[string]bool{
	"bad_request":        true,
	"invalid_value":      true,
	"invalid_index_name": true,
	"index_not_found":    true,
	"not_found":          true,
	"method_not_allowed": true,
	"internal_error":     true,
}

// errorStatus labels a failed call: the API error code, "api_error" for
// unrecognized codes, or "transport_error" when no response was decoded.
func errorStatus(err error) string {
	var ae *APIError
	if !errors.As(err, &ae) {
		return "transport_error"
	}
	if knownCodes[ae.Code] {
		return ae.Code
	}
	return "api_error"
}

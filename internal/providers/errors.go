// Package providers contains the upstream data adapters: Open-Meteo for
// geocoding and weather, Alpha Vantage for market data, and FRED for
// economic series. Each adapter issues plain HTTP GET requests and
// normalizes the provider's JSON into flat typed records. Failures are
// always classified into one of four kinds so callers can turn them into
// structured tool results.
package providers

import (
	"errors"
	"fmt"
)

// Kind classifies adapter failures
type Kind string

const (
	// KindMissingCredential means the provider's API key is not configured
	KindMissingCredential Kind = "missing_credential"
	// KindNotFound means the upstream reported no matching entity
	KindNotFound Kind = "not_found"
	// KindUnavailable means a network, HTTP, or parse failure
	KindUnavailable Kind = "upstream_unavailable"
	// KindInvalidArgument means an argument failed validation
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the only error type adapters are allowed to return
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// MissingCredentialf creates a missing-credential error
func MissingCredentialf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindMissingCredential, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not-found error
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailablef creates an upstream-unavailable error
func Unavailablef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf creates an invalid-argument error
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification of an error. Errors that did not
// originate from an adapter count as upstream failures.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnavailable
}

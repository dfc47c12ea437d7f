// Package apierr holds the error taxonomy shared by the credential resolver,
// the request executor and the public battlenet package.
package apierr

import (
	"errors"
	"fmt"
)

// ErrCredentialsUnset is the message used when no tier supplied both credential fields.
const ErrCredentialsUnset = "CLIENTID or BLSECRET are not set"

// ConfigurationError reports unresolved credentials or a malformed secrets source.
type ConfigurationError struct {
	// Key names the missing configuration key, when the failure is about one.
	Key string
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	msg := e.Msg
	if msg == "" && e.Key != "" {
		msg = "missing required configuration key: " + e.Key
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UnexpectedStatusError is returned for a non-200 response the transport did not treat as an error.
type UnexpectedStatusError struct {
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Status)
}

// HTTPRequestError is an error response (3xx left unfollowed, 4xx, 5xx) carrying the status code and reason.
type HTTPRequestError struct {
	Code   int
	Reason string
}

func (e *HTTPRequestError) Error() string {
	return fmt.Sprintf("http error: %d - %s", e.Code, e.Reason)
}

// NetworkError is a connection, DNS or other transport failure with no HTTP status.
type NetworkError struct {
	Reason string
	Err    error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Reason
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UnexpectedError wraps anything that fits none of the other kinds.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// ProtocolError reports a 200 response whose body does not have the expected layout.
type ProtocolError struct {
	Field string
	Err   error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("protocol error: field %q: %v", e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("protocol error: missing field %q", e.Field)
	default:
		return fmt.Sprintf("protocol error: %v", e.Err)
	}
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var httpErr *HTTPRequestError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	var statusErr *UnexpectedStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

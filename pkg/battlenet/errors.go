package battlenet

import (
	"errors"

	"github.com/Checker-Finance/battlenet/internal/apierr"
)

// Error kinds returned by the client. Use errors.As to tell them apart.
type (
	// ConfigurationError: credentials unresolved or the secrets file is malformed.
	ConfigurationError = apierr.ConfigurationError
	// UnexpectedStatusError: a non-200 status the transport did not treat as an error.
	UnexpectedStatusError = apierr.UnexpectedStatusError
	// HTTPRequestError: an error response carrying a status code and reason.
	HTTPRequestError = apierr.HTTPRequestError
	// NetworkError: a connection or DNS failure with no HTTP status.
	NetworkError = apierr.NetworkError
	// UnexpectedError: anything else.
	UnexpectedError = apierr.UnexpectedError
	// ProtocolError: a 200 response without the expected layout.
	ProtocolError = apierr.ProtocolError
)

// ErrNotReady is returned by calls on a Client that was not built by New.
var ErrNotReady = errors.New("battlenet: client is not ready")

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	return apierr.StatusCode(err)
}

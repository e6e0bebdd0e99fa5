package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is returned when the backend answers 401 or 403.
	// The session is cleared before this error is surfaced.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrMissingTOTPToken is returned by login when the account requires a one-time code
	// and none was supplied. Its message matches the backend status value.
	ErrMissingTOTPToken = errors.New("missing-totp-token")
	// ErrLoginFailed is returned by login for every other rejected attempt.
	ErrLoginFailed = errors.New("login failed")
	// ErrTransport is returned when the request never produced a usable response.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse is returned when a JSON response cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnknown is used when a failure carries no further information.
	ErrUnknown = errors.New("an unknown error occurred")
)

// APIError describes a non-2xx answer of the management API.
type APIError struct {
	StatusCode int    // HTTP status code
	Reason     string // Backend supplied reason, if any
	Err        error  // Classification sentinel, if any
}

// Error returns the backend reason verbatim when present.
func (e *APIError) Error() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err means the session is no longer valid.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

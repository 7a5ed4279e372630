package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy surfaced by the authenticated client
var (
	// Transport errors
	ErrNetwork      = errors.New("network error")
	ErrUnauthorized = errors.New("unauthorized")

	// Credential errors
	ErrMissingRefreshToken    = errors.New("missing refresh token")
	ErrInvalidRefreshResponse = errors.New("invalid refresh response")
	ErrSessionExpired         = errors.New("session expired")

	// Store errors
	ErrStoreClosed = errors.New("credential store closed")
	ErrSealKey     = errors.New("invalid seal key")
)

// maxBodyInMessage limits how much of a response body is echoed by HTTPError.Error
const maxBodyInMessage = 256

// HTTPError is returned when the server answered with a failure status.
// A 401 matches ErrUnauthorized; every other status is an "other" HTTP error
// and is surfaced to the caller verbatim.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
	if len(e.Body) == 0 {
		return msg
	}
	body := e.Body
	if len(body) > maxBodyInMessage {
		body = body[:maxBodyInMessage]
	}
	return msg + ": " + string(body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// NetworkError is returned when no response reached the client
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// SessionExpiredError is terminal. The credential store has been cleared and
// the caller must authenticate again.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	if e.Cause == nil {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSessionExpired, e.Cause)
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Cause
}

func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrSessionExpired
}

// IsUnauthorized reports whether err was caused by a 401 response
func IsUnauthorized(err error) bool {
	return Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0 when no response was received
func StatusCode(err error) int {
	var httpErr *HTTPError
	if As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

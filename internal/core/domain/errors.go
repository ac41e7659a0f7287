package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected locally, before any network call.
	ErrValidation = errors.New("validation error")
	// ErrConcurrentAuthAttempt is returned while another login/register is in flight.
	ErrConcurrentAuthAttempt = errors.New("authentication already in progress")
	// ErrAuthRejected means the backend answered a login/register with an error.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrAuthResponseInvalid means the backend said yes but the payload is unusable.
	ErrAuthResponseInvalid = errors.New("authentication response invalid")
	// ErrTransportFailure covers network errors and timeouts reaching the backend.
	ErrTransportFailure = errors.New("backend unreachable")
	// ErrTokenRejected is a 401 on a call made with a credential token.
	ErrTokenRejected = errors.New("credential token rejected")
	// ErrUnknownView is returned for view keys the dashboard shell does not serve.
	ErrUnknownView = errors.New("unknown view")
	// ErrNoSession is returned when an operation needs an identity and there is none.
	ErrNoSession = errors.New("no active session")
)

// BackendError is a non-2xx answer from the backend API.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// ErrStoredIdentityMalformed marks a persisted record that cannot be trusted.
var ErrStoredIdentityMalformed = errors.New("stored identity malformed")

// ErrStaleResponse is returned to an auth call whose answer arrived after the
// session it belonged to was logged out. The answer is discarded.
var ErrStaleResponse = errors.New("authentication response discarded: session changed")

// FieldError is a local validation failure on one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Is makes every FieldError match ErrValidation.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

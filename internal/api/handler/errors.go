package handler

import (
	"errors"
	"net/http"

	"github.com/myduka/web-frontend/internal/core/domain"
)

// StatusFor maps a domain error to the HTTP status and the message safe to
// show the user. ok is false for errors nobody anticipated.
func StatusFor(err error) (status int, msg string, ok bool) {
	var be *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrConcurrentAuthAttempt):
		return http.StatusConflict, "please wait, a sign-in is already in progress", true
	case errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict, "your session changed, please sign in again", true
	case errors.Is(err, domain.ErrAuthRejected), errors.Is(err, domain.ErrAuthResponseInvalid):
		return http.StatusUnauthorized, "authentication failed", true
	case errors.Is(err, domain.ErrTransportFailure):
		return http.StatusBadGateway, "unable to reach the server, please try again", true
	case errors.Is(err, domain.ErrTokenRejected), errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, "not signed in", true
	case errors.Is(err, domain.ErrUnknownView):
		return http.StatusNotFound, "view not found", true
	case errors.As(err, &be):
		if be.StatusCode >= 400 && be.StatusCode < 500 {
			msg := be.Message
			if msg == "" {
				msg = http.StatusText(be.StatusCode)
			}
			return be.StatusCode, msg, true
		}
		return http.StatusBadGateway, "the server could not complete the request", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

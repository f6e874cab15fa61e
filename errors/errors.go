package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrUnknownConnection  = fmt.Errorf("unknown connection")
	ErrAmbiguousIdentity  = fmt.Errorf("ambiguous identity")
	ErrRecipientNotFound  = fmt.Errorf("recipient not found")
	ErrRoomLimitReached   = fmt.Errorf("room limit reached")
	ErrRoomFull           = fmt.Errorf("room is full")
	ErrInvalidCommand     = fmt.Errorf("invalid command")
	ErrInvalidFrame       = fmt.Errorf("invalid frame")
	ErrSinkFull           = fmt.Errorf("connection send buffer is full")
	ErrSinkClosed         = fmt.Errorf("connection is closed")
	ErrEngineBusy         = fmt.Errorf("relay command queue is full")
	ErrEngineStopped      = fmt.Errorf("relay is stopped")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrInvalidSignup      = fmt.Errorf("invalid signup request")
	ErrUserAlreadyExists  = fmt.Errorf("username already taken")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

// MapToHTTPStatus translates a sentinel error into the status code returned by the HTTP API.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrInvalidSignup):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEngineBusy), errors.Is(err, ErrEngineStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

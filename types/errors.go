package types

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error for HTTP mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindAuthorization
	KindUnauthenticated
	KindConflict
	KindUpstreamUnavailable
	KindInternal
)

// AppError is the error type every service operation returns on failure.
// Handlers map Kind to an HTTP status and render the standard
// {message, data} body.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error kind.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) *AppError {
	return &AppError{Kind: KindNotFound, Message: entity + " not found"}
}

func Authorization(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func UpstreamUnavailable(message string, err error) *AppError {
	return &AppError{Kind: KindUpstreamUnavailable, Message: message, Err: err}
}

func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// InvalidTransition names the booking's current status and the status the
// attempted action requires.
func InvalidTransition(action, current, required string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("Cannot %s booking with status: %s. Only %s bookings can be %s.", action, current, required, pastTense(action)),
	}
}

func pastTense(action string) string {
	switch action {
	case "start":
		return "started"
	case "complete":
		return "completed"
	case "cancel":
		return "cancelled"
	case "reschedule":
		return "rescheduled"
	default:
		return action + "ed"
	}
}

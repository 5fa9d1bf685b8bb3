package errprocess

import (
	"errors"
	"fmt"
	"net/http"

	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
)

// Kinds shared by every bounded context; domain packages alias these so handlers can map
// any error to a status code without importing each domain.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrPersistence  = errors.New("persistence error")
	ErrUnauthorized = errors.New("unauthorized")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Error carries a kind, a client facing message and the cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
}

// Is matches the kind, so errors.Is(err, ErrNotFound) works on wrapped values.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a kinded error without a cause.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap logs cause and returns it under kind.
func Wrap(kind error, cause error, msg string) error {
	logger.Log.Error(msg, zap.String("kind", kind.Error()), zap.Error(cause))
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Message is the text a client gets to see.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

// Status maps the error taxonomy onto http codes.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

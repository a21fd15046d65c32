package actions

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// them through errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("persistence failure")
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AuthorizationError is returned when the acting user does not organize the
// event being changed.
type AuthorizationError struct {
	UserID  string
	EventID string
}

func (e AuthorizationError) Error() string {
	return fmt.Sprintf("user %s is not the organizer of event %s", e.UserID, e.EventID)
}

func (e AuthorizationError) Is(target error) bool {
	return target == ErrForbidden
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func (e PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistence(op string, err error) error {
	return PersistenceError{Op: op, Err: err}
}

// outcome names the error kind for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

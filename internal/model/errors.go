package model

import "errors"

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify with errors.Is(err, model.ErrNotFound) without listing each case.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrConflict         = errors.New("conflict")
)

type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

// ErrToggleConflict is returned when a follow or like toggle kept losing to
// concurrent toggles on the same pair and gave up.
var ErrToggleConflict = newError(ErrConflict, "concurrent update, please retry")

// ErrActorRequired is returned by mutations called without a principal.
var ErrActorRequired = newError(ErrUnauthenticated, "authentication required")

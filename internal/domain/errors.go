package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services. Handlers map these
// to HTTP status codes; everything else surfaces as a generic 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrAlreadyApplied     = errors.New("application already exists for this internship")
	ErrForbidden          = errors.New("forbidden")
	ErrRoleAlreadySet     = errors.New("role already selected")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrReasonRequired     = errors.New("rejection reason is required")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileIncomplete  = errors.New("profile is required before applying")
	ErrValidation         = errors.New("invalid input")
)

// Validationf builds a caller-input error carrying ErrValidation, so handlers
// report it as a 400 instead of an internal failure.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

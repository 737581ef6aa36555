package domain

import (
	"errors"
	"fmt"
)

// AppError is an explicit application failure raised with a message and an
// HTTP status. Code is optional; the response layer derives one from the
// status when empty.
type AppError struct {
	Msg    string
	Status int
	Code   string
	Err    error
}

func (e AppError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "application error"
}

func (e AppError) Unwrap() error { return e.Err }

// NewError is the throw primitive for handlers: raise a classified failure
// with a client-safe message and status.
func NewError(msg string, status int) AppError {
	return AppError{Msg: msg, Status: status}
}

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ConflictError struct {
	Field string
	Msg   string
	Err   error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("duplicate value for %s", e.Field)
	default:
		return "duplicate value"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InvalidIDError marks a path or payload identifier that does not have the
// expected shape.
type InvalidIDError struct {
	Value string
	Err   error
}

func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid identifier: %s", e.Value)
}

func (e InvalidIDError) Unwrap() error { return e.Err }

// QueryError marks unusable client-supplied list parameters (unknown filter
// operator, unknown field, malformed value). Always client input, never a
// server fault.
type QueryError struct {
	Msg string
	Err error
}

func (e QueryError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid query parameters"
}

func (e QueryError) Unwrap() error { return e.Err }

// CredentialReason narrows a CredentialError to one of the four
// authentication failure kinds. All map to 401.
type CredentialReason int

const (
	// CredentialMissing: no Authorization header or wrong scheme.
	CredentialMissing CredentialReason = iota
	// CredentialInvalid: malformed token, bad signature, or wrong algorithm.
	CredentialInvalid
	// CredentialExpired: signature fine, expiry elapsed.
	CredentialExpired
	// PrincipalGone: token verified but the subject no longer exists.
	PrincipalGone
)

type CredentialError struct {
	Reason CredentialReason
	Err    error
}

func (e CredentialError) Error() string {
	switch e.Reason {
	case CredentialMissing:
		return "You are not logged in. Please log in to get access."
	case CredentialExpired:
		return "Your token has expired. Please log in again."
	case PrincipalGone:
		return "The user belonging to this token does no longer exist."
	default:
		return "Invalid token. Please log in again."
	}
}

func (e CredentialError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsCredential(err error) bool {
	var target CredentialError
	return errors.As(err, &target)
}

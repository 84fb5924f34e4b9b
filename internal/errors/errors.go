// Package errors provides standardized domain errors with stable numeric codes
// for the psst daemon.
//
// Usage:
//
//	// In services - return typed errors
//	if used {
//	    return errors.ErrInviteAlreadyUsed
//	}
//
//	// In the transport - check with errors.Is
//	if errors.Is(err, errors.ErrUnauthorized) { ... }
//
//	// Or map to a wire code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    writeRPCError(w, domainErr.Code.RPCCode(), domainErr.Message)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error kind.
type Code string

// Error kinds used throughout the application.
const (
	CodeInternal            Code = "INTERNAL"
	CodeInvalidSignature    Code = "INVALID_SIGNATURE"
	CodeInviteExpired       Code = "INVITE_EXPIRED"
	CodeInvalidInviteSigner Code = "INVALID_INVITE_SIGNER"
	CodeInviteAlreadyUsed   Code = "INVITE_ALREADY_USED"
	CodeConstraint          Code = "CONSTRAINT"
	CodeDuplicateEntity     Code = "DUPLICATE_ENTITY"
	CodeUnauthorized        Code = "UNAUTHORIZED"
)

// RPCCode returns the stable numeric code reported to callers.
// The numbers live in the JSON-RPC server-error range but are not tied to
// any transport; clients dispatch on them.
func (c Code) RPCCode() int {
	switch c {
	case CodeInvalidSignature:
		return -32001
	case CodeInviteExpired:
		return -32002
	case CodeInvalidInviteSigner:
		return -32003
	case CodeInviteAlreadyUsed:
		return -32004
	case CodeConstraint:
		return -32005
	case CodeDuplicateEntity:
		return -32006
	case CodeUnauthorized:
		return -32403
	default:
		return -32000
	}
}

// Error is a domain error with a kind, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// RPCCode returns the numeric code for this error.
func (e *Error) RPCCode() int {
	return e.Code.RPCCode()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is(). Messages match the wire contract
// clients already display verbatim.
var (
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInvalidSignature    = &Error{Code: CodeInvalidSignature, Message: "Invalid signature"}
	ErrInviteExpired       = &Error{Code: CodeInviteExpired, Message: "Invite expired"}
	ErrInvalidInviteSigner = &Error{Code: CodeInvalidInviteSigner, Message: "Invite is not signed by an admin"}
	ErrInviteAlreadyUsed   = &Error{Code: CodeInviteAlreadyUsed, Message: "Invite already used"}
	ErrConstraint          = &Error{Code: CodeConstraint, Message: "Name too long"}
	ErrDuplicateEntity     = &Error{Code: CodeDuplicateEntity, Message: "Duplicate entity"}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized, Message: "I'm sorry Dave, I'm afraid I can't do that"}
)

// Constructor functions for creating errors with custom messages.

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Constraint creates a constraint error.
func Constraint(msg string) *Error {
	return &Error{Code: CodeConstraint, Message: msg}
}

// Duplicate creates a duplicate entity error.
func Duplicate(msg string) *Error {
	return &Error{Code: CodeDuplicateEntity, Message: msg}
}

// InvalidSignature creates an invalid signature error.
func InvalidSignature(msg string) *Error {
	return &Error{Code: CodeInvalidSignature, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// File: codes.go
// Title: Error Code Definitions
// Description: Classification codes for errors raised while registering,
//              resolving and invoking commands, plus the generic codes used by
//              configuration and transport code.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-15 v0.2.0: Command dispatch codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Command lookup and dispatch
	CodeUnknownCommand   Code = "UNKNOWN_COMMAND"
	CodeNoMatchingUsage  Code = "NO_MATCHING_USAGE"
	CodeTypeError        Code = "TYPE_ERROR"
	CodeMissingParameter Code = "MISSING_PARAMETER"
	CodeArityError       Code = "ARITY_ERROR"
	CodeHandlerError     Code = "HANDLER_ERROR"
	CodeNotAllowed       Code = "NOT_ALLOWED"

	// Command registration
	CodeRegistration          Code = "REGISTRATION_ERROR"
	CodeUnsupportedReturnType Code = "UNSUPPORTED_RETURN_TYPE"
	CodeDuplicateUsage        Code = "DUPLICATE_USAGE"

	// Configuration and storage
	CodeConfigError  Code = "CONFIG_ERROR"
	CodeStorageError Code = "STORAGE_ERROR"
	CodeNetworkError Code = "NETWORK_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsDispatch reports whether the code belongs to a per-call failure that is
// rendered as invocation output instead of aborting the caller.
func (c Code) IsDispatch() bool {
	switch c {
	case CodeUnknownCommand, CodeNoMatchingUsage, CodeTypeError,
		CodeMissingParameter, CodeArityError, CodeHandlerError, CodeNotAllowed:
		return true
	default:
		return false
	}
}

// IsRegistration reports whether the code is raised at build time.
func (c Code) IsRegistration() bool {
	switch c {
	case CodeRegistration, CodeUnsupportedReturnType, CodeDuplicateUsage:
		return true
	default:
		return false
	}
}

// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification used to pick log levels for errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15

package error

// Severity represents how serious an error is
type Severity int

const (
	// SeverityLow covers bad caller input: unknown commands, coercion failures
	SeverityLow Severity = iota

	// SeverityMedium covers faults inside a handler
	SeverityMedium

	// SeverityHigh covers malformed registrations and broken infrastructure
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert reports whether the severity warrants operator attention
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode maps a code to its default severity
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeUnknownCommand, CodeNoMatchingUsage, CodeTypeError,
		CodeMissingParameter, CodeArityError, CodeInvalidInput, CodeNotFound:
		return SeverityLow
	case CodeHandlerError, CodeNetworkError:
		return SeverityMedium
	case CodeRegistration, CodeUnsupportedReturnType, CodeDuplicateUsage,
		CodeConfigError, CodeStorageError:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

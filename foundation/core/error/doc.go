// Package error provides the coded error type shared by the nucmd packages.
//
// Package: error
// Title: nucmd Error Handling
// Description: A structured error carrying a classification code, a severity,
//              free-form details and an optional cause. Command dispatch uses the
//              codes to tell unknown commands, unmatched usages, coercion failures
//              and handler faults apart without string matching.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-15 v0.2.0: Command dispatch codes, stack capture removed
//
// Usage:
//
//	err := error.New("cannot convert 'x' to int").
//		WithCode(error.CodeTypeError).
//		WithDetail("parameter", "count")
//
//	if error.HasCode(err, error.CodeTypeError) {
//		// render as invocation output
//	}
package error

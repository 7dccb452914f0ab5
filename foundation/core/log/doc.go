// Package log provides structured logging for the nucmd packages.
//
// Package: log
// Title: nucmd Structured Logging
// Description: Leveled, field-based logging with JSON, text, console and logfmt
//              output. Loggers are immutable: every With* call returns a copy, so a
//              registry, a processor and a single invocation can each carry their
//              own context without locking around handler calls.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-15 v0.2.0: Command/invocation context, async buffer and timers removed
//
// Usage:
//
//	logger := log.New().
//		WithLevel(log.LevelDebug).
//		WithFormat(log.FormatText).
//		WithField("component", "registry")
//
//	logger.Info("command registered", log.Fields{"command": "echo", "usages": 2})
//	logger.WithInvocation("echo", id).Warn("handler failed", log.Err(err))
package log

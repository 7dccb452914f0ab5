// ============================================================================
// nucmd - Command Registry and Invocation Engine
// ============================================================================
//
// Package:     processor
// Description: Command processor shared by every communicator
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

// Package processor owns the command registry of a running nucmd instance.
// It registers the built-in help, list and exit commands, turns raw command
// lines into dispatches and drives the attached communicators (interactive
// shell, websocket server, gRPC service).
//
// Every dispatch gets an invocation id, a log entry and a trace span.
package processor

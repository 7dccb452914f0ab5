// Package stringx provides the string helpers used by command help output,
// listing filters and tab completion.
//
// Package: stringx
// Title: String Utilities
// Description: Unicode-aware helpers that the standard library leaves out:
//              blank checks, case-insensitive containment, common prefixes,
//              padding and word wrapping.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core utilities
// - 2026-10-15 v0.2.0: Reduced to the helpers the command packages use; WordWrap and CommonPrefix added
package stringx

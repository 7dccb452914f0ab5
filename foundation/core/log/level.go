// File: level.go
// Title: Log Level Definitions
// Description: Log levels for filtering output, with parsing from config values.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15

package log

import (
	"strings"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace logs every resolution step
	LevelTrace Level = iota

	// LevelDebug logs rejected usages and bind failures
	LevelDebug

	// LevelInfo logs registrations and lifecycle events
	LevelInfo

	// LevelWarn logs handler faults
	LevelWarn

	// LevelError logs infrastructure failures
	LevelError

	// LevelFatal logs right before the process exits
	LevelFatal
)

type levelInfo struct {
	name    string
	short   string
	color   string
	aliases []string
}

// indexed by Level
var levels = [...]levelInfo{
	{"trace", "TRC", "\033[37m", nil},
	{"debug", "DBG", "\033[36m", nil},
	{"info", "INF", "\033[32m", []string{"information"}},
	{"warn", "WRN", "\033[33m", []string{"warning"}},
	{"error", "ERR", "\033[31m", nil},
	{"fatal", "FTL", "\033[35m", nil},
}

func (l Level) info() (levelInfo, bool) {
	if l < LevelTrace || int(l) >= len(levels) {
		return levelInfo{}, false
	}
	return levels[l], true
}

// String returns the lower-case name used in config files and JSON output
func (l Level) String() string {
	if li, ok := l.info(); ok {
		return li.name
	}
	return "unknown"
}

// ShortString returns the three-letter tag used by the text formatter
func (l Level) ShortString() string {
	if li, ok := l.info(); ok {
		return li.short
	}
	return "???"
}

// Color returns the ANSI color for console output
func (l Level) Color() string {
	if li, ok := l.info(); ok {
		return li.color
	}
	return "\033[0m"
}

// ShouldLog returns true if this level should be logged given the minimum level
func (l Level) ShouldLog(minLevel Level) bool {
	return l >= minLevel
}

// ParseLevel accepts a level name, its short tag or a common alias, in any
// case. Unknown input yields LevelInfo and a *ParseError.
func ParseLevel(level string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(level))
	for i, li := range levels {
		if s == li.name || s == strings.ToLower(li.short) {
			return Level(i), nil
		}
		for _, alias := range li.aliases {
			if s == alias {
				return Level(i), nil
			}
		}
	}
	return LevelInfo, &ParseError{Input: level, Type: "level"}
}

// ParseError represents an error parsing a log configuration value
type ParseError struct {
	Input string
	Type  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}

// DefaultLevel returns the default log level
func DefaultLevel() Level {
	return LevelInfo
}

// ============================================================================
// nucmd - Command Registry and Invocation Engine
// ============================================================================
//
// Package:     version
// Description: Central version and build metadata
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for the nucmd components
const (
	// Platform version
	Platform = "0.3.0"

	// Component versions
	Shell     = "0.3.0"
	Websocket = "0.2.0"
	RPC       = "0.2.0"
)

// Build metadata, set with -ldflags "-X github.com/msto63/nucmd/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "shell":
		return Shell
	case "websocket":
		return Websocket
	case "rpc", "grpc":
		return RPC
	default:
		return Platform
	}
}

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   Platform,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the build information on one line
func (i Info) String() string {
	return fmt.Sprintf("nucmd %s (commit %s, built %s, %s %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

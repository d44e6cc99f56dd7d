// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build metadata stamped in by the release
// pipeline via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is overwritten by semantic-release at build time.
	Version = "0.0.0-development"

	// GitCommit and BuildDate identify the exact build.
	GitCommit = "unknown"
	BuildDate = "unknown"

	// GoVersion and Platform come from the running binary, not the
	// release pipeline.
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info returns the one-line form shown by the -version flag.
func Info() string {
	return fmt.Sprintf("pii-redact %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, GitCommit, BuildDate, GoVersion, Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Full returns every field, keyed for structured output.
func Full() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
	}
}

// Package version reports the build of the kwartrack binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags "-X".
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version string. Without ldflags the commit falls back
// to the VCS revision stamped by the go toolchain.
func String() string {
	commit := Commit
	if commit == "unknown" {
		commit = vcsRevision()
	}
	return fmt.Sprintf("kwartrack dev (commit: %s, built: %s)", short(commit), BuildTime)
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return "unknown"
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

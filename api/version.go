package api

import (
	"runtime/debug"

	"github.com/samber/lo"
)

// Version and VersionCommit hold the version information
var (
	Version       = "0.1.0"
	VersionCommit = ""
)

func init() {
	if i, ok := debug.ReadBuildInfo(); ok {
		if rev, ok := lo.Find(i.Settings, func(s debug.BuildSetting) bool {
			return s.Key == "vcs.revision"
		}); ok {
			VersionCommit = rev.Value
		}
	}
}

// VersionString is the version reported by the CLI and the health route
func VersionString() string {
	if VersionCommit == "" {
		return Version
	}
	return Version + " (" + lo.Substring(VersionCommit, 0, 7) + ")"
}

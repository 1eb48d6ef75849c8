package version

import (
	"runtime/debug"
	"sync"
)

// Version information for nowmeta
const (
	// Version is the current semantic version
	Version = "0.3.0"

	// MCPProtocolVersion is the protocol revision the tool schemas target
	MCPProtocolVersion = "2025-06-18"
)

// Set during build with -ldflags "-X github.com/standardbeagle/nowmeta/internal/version.GitCommit=..."
var (
	GitCommit = "unknown"
	BuildDate = "development"
)

// FullInfo returns detailed version information
func FullInfo() string {
	return "nowmeta " + Version + " (commit: " + revision() + ", built: " + BuildDate + ")"
}

var (
	vcsRevision string
	vcsOnce     sync.Once
)

// revision prefers the linker-provided commit and falls back to the VCS
// stamp embedded by the go tool.
func revision() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	vcsOnce.Do(func() {
		vcsRevision = GitCommit
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 12 {
				vcsRevision = s.Value[:12]
			}
		}
	})
	return vcsRevision
}

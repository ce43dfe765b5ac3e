package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time parameters set via -ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full version string
func Full() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}

// Info returns detailed version information
func Info() string {
	return fmt.Sprintf(
		"docchat %s\nGo: %s\nOS/Arch: %s/%s\nBuilt: %s\nCommit: %s",
		Version,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		BuildTime,
		GitCommit,
	)
}

// Binaries installed with `go install` carry no -ldflags; fall back to the
// module version recorded in the build info.
func init() {
	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
}

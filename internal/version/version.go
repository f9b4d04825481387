// Where: cli/internal/version/version.go
// What: Version information retrieval.
// Why: Release ledgers and bug reports need to name the exact tool build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set at link time:
//
//	go build -ldflags "-X github.com/poruru/release-sweep/cli/internal/version.Version=v1.2.0"
var Version string

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the linked version, the module version, or the VCS
// revision (with "(dirty)" for modified trees), in that order. It returns
// "dev" when none is available.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}

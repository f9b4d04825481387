// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru/release-sweep/cli/internal/meta"
)

// HostEnvKey constructs a tool-scoped environment variable name.
// Example: HostEnvKey("AWS_REGION") returns "RELEASE_SWEEP_AWS_REGION".
func HostEnvKey(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// GetHostEnv returns the trimmed value of the tool-scoped variable.
func GetHostEnv(suffix string) string {
	return strings.TrimSpace(os.Getenv(HostEnvKey(suffix)))
}

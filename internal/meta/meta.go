// Where: cli/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep naming of binaries, env vars, and temporary images in one place.
package meta

const (
	// Project Identity
	AppName   = "release-sweep"
	EnvPrefix = "RELEASE_SWEEP"

	// Build Layout
	BuildImageRepo = "release-sweep-build"

	// Default Inputs
	DefaultManifestFile = "release.json"
	DefaultCIConfigFile = ".evergreen.yml"
	DefaultConfigFile   = "release-sweep.yaml"
)

// Where: cli/internal/infra/build/errors.go
// What: Error types for image builds.
// Why: Callers record build output in the ledger without parsing strings.
package build

import (
	"errors"
	"fmt"
)

var (
	errCommandRunnerNil   = errors.New("command runner is nil")
	errDockerClientNil    = errors.New("docker client is nil")
	errContextDirRequired = errors.New("build context dir is required")
)

// BuildError reports a failed buildx invocation with its captured output.
type BuildError struct {
	Context string
	Output  string
	Hint    string
	Err     error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("buildx build failed for %s: %v", e.Context, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

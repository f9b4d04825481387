// Where: cli/internal/infra/runner/runner.go
// What: External command execution used by build and publish steps.
// Why: Keep subprocess calls behind one interface so they can be faked in tests.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// DefaultTool is the container CLI used when DOCKER is unset.
const DefaultTool = "docker"

// CommandRunner defines the interface for executing external commands.
type CommandRunner interface {
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	// Echo receives combined output as it is produced. Output is captured
	// either way so failures can report it.
	Echo   io.Writer
	Logger *zap.Logger
}

func (r ExecRunner) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if r.Logger != nil {
		r.Logger.Debug("exec", zap.String("dir", dir), zap.String("cmd", name+" "+strings.Join(args, " ")))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if r.Echo != nil {
		sink = io.MultiWriter(&captured, r.Echo)
	}
	cmd.Stdout = sink
	cmd.Stderr = sink
	if err := cmd.Run(); err != nil {
		return captured.Bytes(), fmt.Errorf("run %s: %w", name, err)
	}
	return captured.Bytes(), nil
}

// Tool resolves the container CLI binary, honoring the DOCKER override.
func Tool() string {
	return ToolFromEnv(os.Getenv)
}

// ToolFromEnv is Tool with an injectable environment lookup.
func ToolFromEnv(getenv func(string) string) string {
	if getenv == nil {
		return DefaultTool
	}
	if value := strings.TrimSpace(getenv("DOCKER")); value != "" {
		return value
	}
	return DefaultTool
}

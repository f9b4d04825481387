// Where: cli/cmd/release-sweep/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/command"
	"github.com/poruru/release-sweep/cli/internal/infra/build"
	"github.com/poruru/release-sweep/cli/internal/infra/config"
	"github.com/poruru/release-sweep/cli/internal/infra/interaction"
	"github.com/poruru/release-sweep/cli/internal/infra/publish"
	"github.com/poruru/release-sweep/cli/internal/infra/registry"
	"github.com/poruru/release-sweep/cli/internal/infra/runner"
	"github.com/poruru/release-sweep/cli/internal/usecase/release"
)

var (
	notifyContext   = signal.NotifyContext
	newDockerClient = func() (build.DockerClient, error) {
		return build.NewDockerClient()
	}
)

// buildDependencies constructs the runtime dependencies. The returned stop
// function releases the signal handler; an interrupt cancels the context and
// with it every running build or push subprocess.
func buildDependencies() (command.Dependencies, func()) {
	ctx, stop := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return command.Dependencies{
		Out:       os.Stdout,
		ErrOut:    os.Stderr,
		Context:   ctx,
		Confirmer: interaction.TerminalConfirmer{In: os.Stdin, Out: os.Stderr},
		Interactive: func() bool {
			return interaction.IsTerminal(os.Stdin) && interaction.IsTerminal(os.Stdout)
		},
		Release: command.ReleaseDeps{
			NewReleaser: newImageReleaser,
		},
	}, stop
}

// newImageReleaser connects to Docker and assembles the build and publish stack.
// The Docker client is only created for live runs.
func newImageReleaser(cfg config.ReleaseConfig, out io.Writer, logger *zap.Logger) (release.Releaser, io.Closer, error) {
	client, err := newDockerClient()
	if err != nil {
		return nil, nil, err
	}
	tool := runner.Tool()
	execRunner := runner.ExecRunner{Echo: out, Logger: logger}
	releaser := release.ImageReleaser{
		Builder: &build.Builder{
			Runner: execRunner,
			Docker: client,
			Tool:   tool,
			Logger: logger,
		},
		Publisher: &publish.Publisher{
			Runner: execRunner,
			Oracle: registry.NewOracle(logger),
			Tool:   tool,
			Logger: logger,
		},
		Images:   cfg.Images,
		Products: cfg.Products,
		Logger:   logger,
	}
	return releaser, asCloser(client), nil
}

// asCloser returns the client as an io.Closer when it supports closing.
func asCloser(client build.DockerClient) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}

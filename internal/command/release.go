// Where: cli/internal/command/release.go
// What: release command adapter.
// Why: Wire config, manifest, build matrix, and ledger sinks into the release workflow.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domrelease "github.com/poruru/release-sweep/cli/internal/domain/release"
	"github.com/poruru/release-sweep/cli/internal/infra/cimatrix"
	"github.com/poruru/release-sweep/cli/internal/infra/config"
	"github.com/poruru/release-sweep/cli/internal/infra/ledger"
	"github.com/poruru/release-sweep/cli/internal/infra/manifest"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
	"github.com/poruru/release-sweep/cli/internal/usecase/release"
)

var (
	errReleaseCancelled      = errors.New("release cancelled")
	errReleaserNotConfigured = errors.New("releaser factory is not configured")
)

type (
	// ReleaserFactory builds the releaser for a live run. The closer is
	// released when the run ends and may be nil.
	ReleaserFactory func(cfg config.ReleaseConfig, out io.Writer, logger *zap.Logger) (release.Releaser, io.Closer, error)

	ReleaseDeps struct {
		NewReleaser    ReleaserFactory
		ActiveVersions func(path string) ([]string, error)
		LedgerClients  ledger.ClientFactory
		NewRunID       func() string
	}
)

func defaultActiveVersions(path string) ([]string, error) {
	return cimatrix.ActiveProductVersions(path)
}

func newRunID() string {
	return uuid.NewString()
}

func runRelease(cli CLI, deps Dependencies) int {
	out := deps.Out
	cmd := cli.Release

	cfg, err := loadConfig(cli)
	if err != nil {
		return exitWithError(out, err)
	}
	logger := newLogger(cli, deps)
	defer func() { _ = logger.Sync() }()
	userInterface := consoleUI(out, emojiEnabled(out, cli.NoEmoji))

	manifestPath := firstNonEmpty(cmd.Manifest, cfg.Manifest)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return exitWithError(out, err)
	}
	ciPath := firstNonEmpty(cmd.CIConfig, cfg.CIConfig)
	versions, err := deps.Release.ActiveVersions(ciPath)
	if err != nil {
		return exitWithError(out, err)
	}

	runID := deps.Release.NewRunID()
	sinks, err := ledger.FromConfig(deps.Context, cfg.Ledger, ledger.Options{FileOverride: cmd.LedgerOut, RunID: runID, LocalOnly: cmd.DryRun}, deps.Release.LedgerClients)
	if err != nil {
		return exitWithError(out, err)
	}

	userInterface.Block("🚀", "Release", []ui.KeyValue{
		{Key: "Run", Value: runID},
		{Key: "Manifest", Value: manifestPath},
		{Key: "Build matrix", Value: ciPath},
		{Key: "Ops Manager versions", Value: len(versions)},
		{Key: "Mode", Value: releaseMode(cmd)},
	})

	if !cmd.DryRun && !cmd.Yes && deps.Interactive() {
		ok, err := deps.Confirmer.Confirm("Build and publish images?", fmt.Sprintf("%d Ops Manager versions plus the baseline agent", len(versions)))
		if err != nil {
			return exitWithError(out, err)
		}
		if !ok {
			return exitWithError(out, errReleaseCancelled)
		}
	}

	var releaser release.Releaser
	if !cmd.DryRun {
		if deps.Release.NewReleaser == nil {
			return exitWithError(out, errReleaserNotConfigured)
		}
		r, closer, err := deps.Release.NewReleaser(cfg, deps.ErrOut, logger)
		if err != nil {
			return exitWithError(out, err)
		}
		if closer != nil {
			defer func() { _ = closer.Close() }()
		}
		releaser = r
	}

	led := domrelease.NewLedger(runID)
	if sinks.File != nil {
		fileSink := sinks.File
		led.OnAppend = func(records []domrelease.Record) {
			if err := fileSink.Write(deps.Context, runID, records); err != nil {
				logger.Warn("ledger write failed", zap.String("sink", fileSink.Name()), zap.Error(err))
			}
		}
	}

	workflow := release.NewWorkflow(releaser, led, userInterface, logger)
	req := release.Request{
		Manifest:       m,
		AgentProduct:   cfg.Products.Agent,
		ActiveVersions: versions,
		DryRun:         cmd.DryRun,
		KeepGoing:      cmd.KeepGoing,
		Parallel:       cmd.Parallel,
	}
	if err := executeRelease(deps.Context, workflow, req, sinks, out); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

// executeRelease runs the sweep and always prints the summary and persists the
// ledger, whether the sweep succeeded or not.
func executeRelease(ctx context.Context, workflow release.Workflow, req release.Request, sinks ledger.Sinks, out io.Writer) (err error) {
	defer func() {
		records := workflow.Ledger.Records()
		release.WriteSummary(out, records, req.DryRun)
		if persistErr := persistLedger(ctx, sinks, workflow.Ledger.RunID, records); persistErr != nil {
			err = errors.Join(err, persistErr)
		}
	}()
	return workflow.Run(ctx, req)
}

func persistLedger(ctx context.Context, sinks ledger.Sinks, runID string, records []domrelease.Record) error {
	if len(records) == 0 {
		return nil
	}
	var errs []error
	for _, sink := range sinks.All() {
		if err := sink.Write(ctx, runID, records); err != nil {
			errs = append(errs, fmt.Errorf("persist ledger to %s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func releaseMode(cmd ReleaseCmd) string {
	mode := "fail-fast"
	if cmd.KeepGoing {
		mode = "keep-going"
	}
	if cmd.Parallel > 1 {
		mode = fmt.Sprintf("%s, parallel %d", mode, cmd.Parallel)
	}
	if cmd.DryRun {
		mode += " (dry run)"
	}
	return mode
}

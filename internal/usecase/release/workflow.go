// Where: cli/internal/usecase/release/workflow.go
// What: Release sweep orchestration over the compatibility matrix.
// Why: Release the baseline agent, then every active OM version with its agent.
package release

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	domrelease "github.com/poruru/release-sweep/cli/internal/domain/release"
	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/domain/version"
	"github.com/poruru/release-sweep/cli/internal/infra/logging"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
)

// Outcome is what a successful release produced.
type Outcome struct {
	Digest  string
	Images  []string
	Skipped []string
}

// Releaser builds and publishes a single artifact.
type Releaser interface {
	ReleaseAgent(ctx context.Context, pairing matrix.AgentPairing, releaseContext string) (Outcome, error)
	ReleaseOpsManager(ctx context.Context, omVersion string) (Outcome, error)
}

// Entry is one active product version with its resolved agent pairing.
type Entry struct {
	ProductVersion string
	Pairing        matrix.AgentPairing
}

// Request captures the inputs of one sweep.
type Request struct {
	Manifest       *matrix.Manifest
	AgentProduct   string
	ActiveVersions []string
	DryRun         bool
	KeepGoing      bool
	// Parallel > 1 releases distinct OM versions concurrently.
	Parallel int
}

// Workflow executes the release sweep.
type Workflow struct {
	Releaser      Releaser
	Ledger        *domrelease.Ledger
	UserInterface ui.UserInterface
	Logger        *zap.Logger
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(releaser Releaser, ledger *domrelease.Ledger, userInterface ui.UserInterface, logger *zap.Logger) Workflow {
	return Workflow{
		Releaser:      releaser,
		Ledger:        ledger,
		UserInterface: userInterface,
		Logger:        logger,
	}
}

// Run releases the baseline agent and then each active version in ascending order.
func (w Workflow) Run(ctx context.Context, req Request) error {
	if w.Releaser == nil && !req.DryRun {
		return errReleaserNotConfigured
	}
	if w.Ledger == nil {
		return errLedgerNotConfigured
	}
	if req.Manifest == nil {
		return errManifestRequired
	}

	mapping, ok := req.Manifest.Mapping(req.AgentProduct)
	if !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("product %q has no %s in the release manifest", req.AgentProduct, matrix.KeyOpsManagerMapping)}
	}
	if mapping.Baseline == nil || !mapping.Baseline.Pairing.Complete() {
		return &ConfigurationError{Reason: fmt.Sprintf("%s agent or tools version not found in %s", matrix.DefaultBaselineName, matrix.KeyOpsManagerMapping)}
	}
	versions := version.FilterValid(req.ActiveVersions)
	version.SortAscending(versions)

	var failures []error
	baseline := mapping.Baseline
	w.info(fmt.Sprintf("Releasing %s agent %s", baseline.Name, baseline.Pairing.AgentVersion))
	if err := w.releaseAgent(ctx, req, baseline.Pairing, baseline.Name); err != nil {
		if !req.KeepGoing {
			return err
		}
		failures = append(failures, err)
	}

	if req.Parallel > 1 {
		entries, err := resolveEntries(mapping, versions)
		if err != nil {
			return err
		}
		failures = append(failures, w.runParallel(ctx, req, entries)...)
		if err := ctx.Err(); err != nil {
			failures = append(failures, interrupted(err))
		}
	} else {
		for _, v := range versions {
			if err := ctx.Err(); err != nil {
				failures = append(failures, interrupted(err))
				break
			}
			pairing, err := lookupPairing(mapping, v)
			if err != nil {
				return err
			}
			errs := w.releaseEntry(ctx, req, Entry{ProductVersion: v, Pairing: pairing})
			if len(errs) > 0 && !req.KeepGoing {
				return errs[0]
			}
			failures = append(failures, errs...)
		}
	}

	if len(failures) > 0 {
		return &FailedError{Errs: failures}
	}
	return nil
}

// interrupted marks a sweep that stopped before every version was released.
func interrupted(err error) error {
	return fmt.Errorf("release interrupted: %w", err)
}

func resolveEntries(mapping matrix.OpsManagerMapping, versions []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(versions))
	for _, v := range versions {
		pairing, err := lookupPairing(mapping, v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ProductVersion: v, Pairing: pairing})
	}
	return entries, nil
}

func lookupPairing(mapping matrix.OpsManagerMapping, omVersion string) (matrix.AgentPairing, error) {
	pairing, ok := mapping.Lookup(omVersion)
	if ok {
		return pairing, nil
	}
	found := mapping.OpsManager[omVersion]
	return matrix.AgentPairing{}, &ConfigurationError{
		Version: omVersion,
		Reason: fmt.Sprintf("agent mapping incomplete in release manifest (agent_version=%q, tools_version=%q)",
			found.AgentVersion, found.ToolsVersion),
	}
}

// runParallel stops scheduling new entries after the first failure unless
// KeepGoing is set; entries already running finish normally.
func (w Workflow) runParallel(ctx context.Context, req Request, entries []Entry) []error {
	sem := make(chan struct{}, req.Parallel)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stopped atomic.Bool
		errs    []error
	)
	for _, entry := range entries {
		entry := entry
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			if stopped.Load() || ctx.Err() != nil {
				return
			}
			entryErrs := w.releaseEntry(ctx, req, entry)
			if len(entryErrs) == 0 {
				return
			}
			if !req.KeepGoing {
				stopped.Store(true)
			}
			mu.Lock()
			errs = append(errs, entryErrs...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return errs
}

func (w Workflow) releaseEntry(ctx context.Context, req Request, entry Entry) []error {
	var errs []error
	w.info(fmt.Sprintf("Processing OM %s", entry.ProductVersion))
	if err := w.releaseOpsManager(ctx, req, entry.ProductVersion); err != nil {
		errs = append(errs, err)
		if !req.KeepGoing {
			return errs
		}
	}
	if err := w.releaseAgent(ctx, req, entry.Pairing, "OM "+entry.ProductVersion); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (w Workflow) releaseAgent(ctx context.Context, req Request, pairing matrix.AgentPairing, releaseContext string) error {
	record := domrelease.Record{
		Type:    domrelease.TypeAgent,
		Version: pairing.AgentVersion,
		Context: releaseContext,
	}
	return w.track(req, record, func() (Outcome, error) {
		return w.Releaser.ReleaseAgent(ctx, pairing, releaseContext)
	})
}

func (w Workflow) releaseOpsManager(ctx context.Context, req Request, omVersion string) error {
	record := domrelease.Record{
		Type:    domrelease.TypeOpsManager,
		Version: omVersion,
	}
	return w.track(req, record, func() (Outcome, error) {
		return w.Releaser.ReleaseOpsManager(ctx, omVersion)
	})
}

// track runs release (unless dry-run) and appends exactly one record.
func (w Workflow) track(req Request, record domrelease.Record, release func() (Outcome, error)) error {
	logger := logging.OrNop(w.Logger).With(
		zap.String("type", string(record.Type)),
		zap.String("version", record.Version),
		zap.String("context", record.Context),
	)
	if req.DryRun {
		record.Status = domrelease.StatusPending
		w.Ledger.Append(record)
		logger.Debug("dry run: release skipped")
		return nil
	}

	outcome, err := release()
	if err != nil {
		record.Status = domrelease.StatusFailed
		record.Error = err.Error()
		w.Ledger.Append(record)
		logger.Error("release failed", zap.Error(err))
		return fmt.Errorf("release %s %s: %w", record.Type, record.Version, err)
	}
	record.Status = domrelease.StatusSuccess
	record.Digest = outcome.Digest
	record.Images = outcome.Images
	record.Skipped = outcome.Skipped
	w.Ledger.Append(record)
	logger.Info("released", zap.String("digest", outcome.Digest))
	return nil
}

func (w Workflow) info(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Info(msg)
	}
}

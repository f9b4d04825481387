// Where: cli/internal/usecase/trim/trim.go
// What: Manifest trimming workflow.
// Why: Keep the published matrix bounded and report exactly what was dropped.
package trim

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/infra/logging"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
)

var (
	errStoreNotConfigured = errors.New("manifest store is not configured")
	errManifestPathEmpty  = errors.New("manifest path is required")
)

// ErrNotTrimmed is returned in check mode when the manifest would change.
var ErrNotTrimmed = errors.New("manifest is not trimmed")

// ManifestStore loads and saves release manifests.
type ManifestStore interface {
	Load(path string) (*matrix.Manifest, error)
	Save(path string, m *matrix.Manifest) error
}

// Request captures the inputs for one trim pass.
type Request struct {
	ManifestPath string
	Products     []string
	Floor        string
	Keep         int
	Check        bool
}

// Workflow trims a manifest file in place.
type Workflow struct {
	Store         ManifestStore
	UserInterface ui.UserInterface
	Logger        *zap.Logger
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(store ManifestStore, userInterface ui.UserInterface, logger *zap.Logger) Workflow {
	return Workflow{Store: store, UserInterface: userInterface, Logger: logger}
}

// Run applies the trim policy and writes the result unless Check is set.
func (w Workflow) Run(req Request) (matrix.TrimReport, error) {
	if w.Store == nil {
		return matrix.TrimReport{}, errStoreNotConfigured
	}
	if strings.TrimSpace(req.ManifestPath) == "" {
		return matrix.TrimReport{}, errManifestPathEmpty
	}

	m, err := w.Store.Load(req.ManifestPath)
	if err != nil {
		return matrix.TrimReport{}, err
	}
	report := matrix.TrimManifest(m, matrix.TrimOptions{
		Products: req.Products,
		Floor:    req.Floor,
		Keep:     req.Keep,
	})
	w.present(report)

	if !report.Changed() {
		w.success(fmt.Sprintf("%s is already trimmed", req.ManifestPath))
		return report, nil
	}
	if req.Check {
		return report, fmt.Errorf("%w: %s", ErrNotTrimmed, req.ManifestPath)
	}
	if err := w.Store.Save(req.ManifestPath, m); err != nil {
		return report, err
	}
	logging.OrNop(w.Logger).Debug("manifest written", zap.String("path", req.ManifestPath))
	w.success(fmt.Sprintf("Trimmed %s", req.ManifestPath))
	return report, nil
}

func (w Workflow) present(report matrix.TrimReport) {
	if w.UserInterface == nil {
		return
	}
	for _, product := range report.Products {
		if len(product.Removed) == 0 && !product.Injected {
			continue
		}
		rows := []ui.KeyValue{{Key: "Kind", Value: product.Kind.String()}}
		if len(product.Removed) > 0 {
			rows = append(rows, ui.KeyValue{Key: "Removed", Value: strings.Join(product.Removed, ", ")})
		}
		if product.Injected {
			rows = append(rows, ui.KeyValue{Key: "Floor", Value: "added"})
		}
		w.UserInterface.Block("✂️", product.Product, rows)
	}
}

func (w Workflow) success(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Success(msg)
	}
}

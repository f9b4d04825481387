// Where: cli/internal/command/trim.go
// What: trim command adapter.
// Why: Merge flag overrides with the configured trim policy.
package command

import (
	"fmt"

	"github.com/poruru/release-sweep/cli/internal/domain/version"
	"github.com/poruru/release-sweep/cli/internal/infra/manifest"
	"github.com/poruru/release-sweep/cli/internal/usecase/trim"
)

func runTrim(cli CLI, deps Dependencies) int {
	out := deps.Out
	cmd := cli.Trim

	cfg, err := loadConfig(cli)
	if err != nil {
		return exitWithError(out, err)
	}
	logger := newLogger(cli, deps)
	defer func() { _ = logger.Sync() }()

	floor := firstNonEmpty(cmd.Floor, cfg.Trim.Floor)
	if floor != "" && !version.IsValid(floor) {
		return exitWithError(out, fmt.Errorf("floor %q is not a semantic version", floor))
	}
	keep := cfg.Trim.Keep
	if cmd.Keep != 0 {
		if cmd.Keep < 0 {
			return exitWithError(out, fmt.Errorf("--keep must be positive (got %d)", cmd.Keep))
		}
		keep = cmd.Keep
	}
	products := cfg.Trim.Products
	if len(cmd.Product) > 0 {
		products = cmd.Product
	}

	workflow := trim.NewWorkflow(manifest.FileStore{}, consoleUI(out, emojiEnabled(out, cli.NoEmoji)), logger)
	if _, err := workflow.Run(trim.Request{
		ManifestPath: firstNonEmpty(cmd.Manifest, cfg.Manifest),
		Products:     products,
		Floor:        floor,
		Keep:         keep,
		Check:        cmd.Check,
	}); err != nil {
		return exitWithError(out, err)
	}
	return 0
}

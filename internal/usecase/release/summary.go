// Where: cli/internal/usecase/release/summary.go
// What: End-of-run release summary.
// Why: Show every attempted artifact, including failures, before exiting.
package release

import (
	"fmt"
	"io"

	domrelease "github.com/poruru/release-sweep/cli/internal/domain/release"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
)

var summarySections = []struct {
	Type  domrelease.ArtifactType
	Label string
}{
	{Type: domrelease.TypeAgent, Label: "Agents"},
	{Type: domrelease.TypeOpsManager, Label: "Ops Manager"},
}

// WriteSummary prints the ledger grouped by artifact type. Nothing is
// printed for an empty ledger.
func WriteSummary(out io.Writer, records []domrelease.Record, dryRun bool) {
	if len(records) == 0 {
		return
	}
	console := ui.New(out)
	fmt.Fprintln(out)
	console.Rule("=")
	if dryRun {
		console.Info("DRY RUN SUMMARY:")
	} else {
		console.Info("RELEASE SUMMARY:")
	}
	console.Rule("=")

	for _, section := range summarySections {
		items := domrelease.ByType(records, section.Type)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", section.Label)
		for _, r := range items {
			line := fmt.Sprintf("  %s %s", statusIcon(r.Status, dryRun), r.Version)
			if r.Context != "" {
				line += " (" + r.Context + ")"
			}
			fmt.Fprintln(out, line)
			if r.Status == domrelease.StatusFailed && r.Error != "" {
				fmt.Fprintf(out, "      %s\n", firstLine(r.Error))
			}
		}
	}

	fmt.Fprintf(out, "\nTotal: %d releases\n", len(records))
	console.Rule("=")
	fmt.Fprintln(out)
}

func statusIcon(status domrelease.Status, dryRun bool) string {
	if dryRun || status == domrelease.StatusPending {
		return "○"
	}
	if status == domrelease.StatusSuccess {
		return "✓"
	}
	return "✗"
}

// Where: cli/internal/command/agents.go
// What: agents command adapter.
// Why: Feed CI with the agent builds a manifest change requires.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/infra/manifest"
)

func runAgents(cli CLI, deps Dependencies) int {
	out := deps.Out
	cmd := cli.Agents

	cfg, err := loadConfig(cli)
	if err != nil {
		return exitWithError(out, err)
	}
	product := firstNonEmpty(cmd.Product, cfg.Products.Agent)
	manifestPath := firstNonEmpty(cmd.Manifest, cfg.Manifest)

	current, err := loadMapping(manifestPath, product)
	if err != nil {
		return exitWithError(out, err)
	}

	pairings := matrix.AllPairings(current)
	if cmd.Base != "" {
		base, err := loadMapping(cmd.Base, product)
		if err != nil {
			return exitWithError(out, err)
		}
		pairings = matrix.ChangedPairings(current, base)
	}

	if cmd.JSON {
		payload, err := json.Marshal(pairings)
		if err != nil {
			return exitWithError(out, err)
		}
		fmt.Fprintln(out, string(payload))
		return 0
	}
	for _, p := range pairings {
		fmt.Fprintf(out, "%s\t%s\n", p.AgentVersion, p.ToolsVersion)
	}
	return 0
}

func loadMapping(path, product string) (matrix.OpsManagerMapping, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return matrix.OpsManagerMapping{}, err
	}
	mapping, ok := m.Mapping(product)
	if !ok {
		return matrix.OpsManagerMapping{}, fmt.Errorf("%s: product %q has no %s", path, product, matrix.KeyOpsManagerMapping)
	}
	return mapping, nil
}

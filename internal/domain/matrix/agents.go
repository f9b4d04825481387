// Where: cli/internal/domain/matrix/agents.go
// What: Agent pairing listings derived from a mapping.
// Why: Decide which agent images a manifest edit requires.
package matrix

import (
	"sort"

	"github.com/poruru/release-sweep/cli/internal/domain/version"
)

// AllPairings returns every complete pairing in the mapping, baseline
// included, deduplicated and ordered by agent version.
func AllPairings(m OpsManagerMapping) []AgentPairing {
	set := make(map[AgentPairing]struct{})
	for _, pairing := range m.OpsManager {
		if pairing.Complete() {
			set[pairing] = struct{}{}
		}
	}
	if m.Baseline != nil && m.Baseline.Pairing.Complete() {
		set[m.Baseline.Pairing] = struct{}{}
	}
	return sortedPairings(set)
}

// ChangedPairings returns the pairings of current that were added or edited
// relative to base: a new or modified Ops Manager entry, or a changed baseline.
func ChangedPairings(current, base OpsManagerMapping) []AgentPairing {
	set := make(map[AgentPairing]struct{})
	for omVersion, pairing := range current.OpsManager {
		if !pairing.Complete() {
			continue
		}
		previous, ok := base.OpsManager[omVersion]
		if !ok || previous != pairing {
			set[pairing] = struct{}{}
		}
	}
	if current.Baseline != nil && current.Baseline.Pairing.Complete() {
		if base.Baseline == nil || base.Baseline.Pairing != current.Baseline.Pairing {
			set[current.Baseline.Pairing] = struct{}{}
		}
	}
	return sortedPairings(set)
}

func sortedPairings(set map[AgentPairing]struct{}) []AgentPairing {
	out := make([]AgentPairing, 0, len(set))
	for pairing := range set {
		out = append(out, pairing)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AgentVersion != out[j].AgentVersion {
			return version.Compare(out[i].AgentVersion, out[j].AgentVersion) < 0
		}
		return out[i].ToolsVersion < out[j].ToolsVersion
	})
	return out
}

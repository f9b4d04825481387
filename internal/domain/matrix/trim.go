// Where: cli/internal/domain/matrix/trim.go
// What: Per-major-version trimming of version lists and mappings.
// Why: Keep the supported matrix bounded as new releases are appended.
package matrix

import (
	"strings"

	"github.com/poruru/release-sweep/cli/internal/domain/version"
)

// DefaultKeepPerMajor is the number of versions retained per major group.
const DefaultKeepPerMajor = 3

func normalizeKeep(keep int) int {
	if keep <= 0 {
		return DefaultKeepPerMajor
	}
	return keep
}

// TrimVersionList keeps the newest keep versions of every major group and
// forces floor into the result. A floor that survives the cut counts against
// its group; one that would be dropped is added back on top of the bound.
// An empty floor disables the injection. The result is sorted ascending.
func TrimVersionList(versions []string, floor string, keep int) []string {
	keep = normalizeKeep(keep)
	floor = strings.TrimSpace(floor)

	kept := keepNewestPerMajor(version.FilterValid(versions), keep)
	if floor != "" && !contains(kept, floor) {
		kept = append(kept, floor)
	}
	version.SortAscending(kept)
	return kept
}

// TrimMapping keeps the entries whose keys are among the newest keep versions
// of their major group. Values are returned unchanged and no floor is injected.
// Keys that are not versions are left in place.
func TrimMapping[V any](mapping map[string]V, keep int) map[string]V {
	keep = normalizeKeep(keep)
	out := make(map[string]V, len(mapping))
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		if !version.IsValid(key) {
			out[key] = mapping[key]
			continue
		}
		keys = append(keys, key)
	}

	for _, key := range keepNewestPerMajor(keys, keep) {
		out[key] = mapping[key]
	}
	return out
}

func keepNewestPerMajor(values []string, keep int) []string {
	kept := make([]string, 0, len(values))
	for _, group := range version.GroupByMajor(values) {
		version.SortDescending(group)
		if len(group) > keep {
			group = group[:keep]
		}
		kept = append(kept, group...)
	}
	return kept
}

// Removed returns the members of before that are absent from after, ascending.
func Removed(before, after []string) []string {
	present := make(map[string]struct{}, len(after))
	for _, v := range after {
		present[v] = struct{}{}
	}
	var removed []string
	seen := make(map[string]struct{}, len(before))
	for _, v := range before {
		if _, ok := present[v]; ok {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		removed = append(removed, v)
	}
	version.SortAscending(removed)
	return removed
}

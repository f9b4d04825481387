// Where: cli/internal/domain/version/version.go
// What: Semantic version parsing and ordering for release matrices.
// Why: Release manifests and CI files mix versions with unrelated tokens.
package version

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Parse parses a strict MAJOR.MINOR.PATCH version with optional pre-release
// and build metadata. Anything else reports false.
func Parse(value string) (*semver.Version, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, false
	}
	parsed, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

// IsValid reports whether value parses as a strict semantic version.
func IsValid(value string) bool {
	_, ok := Parse(value)
	return ok
}

// MajorOf returns the leading component of value.
func MajorOf(value string) (uint64, bool) {
	parsed, ok := Parse(value)
	if !ok {
		return 0, false
	}
	return parsed.Major(), true
}

// Compare orders two version strings by semver precedence.
// Unparseable strings sort before parseable ones and among themselves lexically.
func Compare(a, b string) int {
	left, leftOK := Parse(a)
	right, rightOK := Parse(b)
	switch {
	case leftOK && rightOK:
		if c := left.Compare(right); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case leftOK:
		return 1
	case rightOK:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// FilterValid keeps the parseable entries of values, deduplicated, in input order.
func FilterValid(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if !IsValid(trimmed) {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// SortAscending sorts values in place from lowest to highest precedence.
func SortAscending(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return Compare(values[i], values[j]) < 0
	})
}

// SortDescending sorts values in place from highest to lowest precedence.
func SortDescending(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return Compare(values[i], values[j]) > 0
	})
}

// GroupByMajor buckets parseable values by their major component.
// Unparseable values are dropped.
func GroupByMajor(values []string) map[uint64][]string {
	groups := make(map[uint64][]string)
	for _, value := range values {
		major, ok := MajorOf(value)
		if !ok {
			continue
		}
		groups[major] = append(groups[major], value)
	}
	return groups
}

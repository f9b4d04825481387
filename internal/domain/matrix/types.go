// Where: cli/internal/domain/matrix/types.go
// What: Compatibility matrix model for the release manifest.
// Why: Give product entries an explicit shape instead of inspecting raw documents.
package matrix

import (
	"encoding/json"
	"sort"
)

// Well-known keys inside a release manifest.
const (
	KeySupportedImages   = "supportedImages"
	KeyVersions          = "versions"
	KeyOpsManagerMapping = "opsManagerMapping"
	KeyBaselineAgent     = "cloud_manager"
	KeyBaselineTools     = "cloud_manager_tools"
	KeyOpsManager        = "ops_manager"

	// DefaultBaselineName is the context label used for the pinned pairing.
	DefaultBaselineName = "cloud_manager"
)

// EntryKind discriminates the ProductEntry union.
type EntryKind int

const (
	// KindOpaque entries carry neither versions nor a mapping and are preserved untouched.
	KindOpaque EntryKind = iota
	KindVersionList
	KindOpsManagerMapping
)

func (k EntryKind) String() string {
	switch k {
	case KindVersionList:
		return "versions"
	case KindOpsManagerMapping:
		return "opsManagerMapping"
	default:
		return "opaque"
	}
}

// AgentPairing pairs an agent build with the tools bundle it ships.
type AgentPairing struct {
	AgentVersion string `json:"agent_version"`
	ToolsVersion string `json:"tools_version"`
}

// Complete reports whether both halves of the pairing are set.
func (p AgentPairing) Complete() bool {
	return p.AgentVersion != "" && p.ToolsVersion != ""
}

// PinnedPairing is a named pairing kept outside the trimmed mapping.
type PinnedPairing struct {
	Name    string
	Pairing AgentPairing
}

// OpsManagerMapping maps Ops Manager versions to agent pairings.
// RawPairings keeps the source bytes of each pairing so retained entries are
// written back exactly as read; Extra holds unrelated sibling keys.
// KeyOrder and VersionOrder record the document order of the mapping keys and
// of the ops_manager keys.
type OpsManagerMapping struct {
	Baseline     *PinnedPairing
	OpsManager   map[string]AgentPairing
	RawPairings  map[string]json.RawMessage
	Extra        map[string]json.RawMessage
	KeyOrder     []string
	VersionOrder []string
}

// Lookup returns the pairing for an Ops Manager version.
func (m OpsManagerMapping) Lookup(omVersion string) (AgentPairing, bool) {
	pairing, ok := m.OpsManager[omVersion]
	if !ok || !pairing.Complete() {
		return AgentPairing{}, false
	}
	return pairing, true
}

// Versions returns the mapped Ops Manager versions in key order.
func (m OpsManagerMapping) Versions() []string {
	keys := make([]string, 0, len(m.OpsManager))
	for key := range m.OpsManager {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ProductEntry is one supportedImages entry: either a version list or an
// Ops Manager mapping. Extra holds sibling keys that are carried through
// unchanged on write.
type ProductEntry struct {
	Kind     EntryKind
	Versions []string
	Mapping  OpsManagerMapping
	Extra    map[string]json.RawMessage
	KeyOrder []string
}

// NewVersionList builds a list-shaped entry.
func NewVersionList(versions ...string) ProductEntry {
	return ProductEntry{Kind: KindVersionList, Versions: append([]string{}, versions...)}
}

// NewMappingEntry builds a mapping-shaped entry.
func NewMappingEntry(mapping OpsManagerMapping) ProductEntry {
	return ProductEntry{Kind: KindOpsManagerMapping, Mapping: mapping}
}

// Manifest is the in-memory view of a release manifest.
// Extra holds top-level keys other than supportedImages. KeyOrder and
// ProductOrder keep the document order so a rewrite only moves what changed.
type Manifest struct {
	SupportedImages map[string]ProductEntry
	Extra           map[string]json.RawMessage
	KeyOrder        []string
	ProductOrder    []string
}

// Product returns the named entry.
func (m *Manifest) Product(name string) (ProductEntry, bool) {
	if m == nil || m.SupportedImages == nil {
		return ProductEntry{}, false
	}
	entry, ok := m.SupportedImages[name]
	return entry, ok
}

// Mapping returns the Ops Manager mapping held by product, if it has that shape.
func (m *Manifest) Mapping(product string) (OpsManagerMapping, bool) {
	entry, ok := m.Product(product)
	if !ok || entry.Kind != KindOpsManagerMapping {
		return OpsManagerMapping{}, false
	}
	return entry.Mapping, true
}

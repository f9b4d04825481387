// Where: cli/internal/infra/manifest/store.go
// What: Release manifest JSON load/save.
// Why: Round-trip the manifest without dropping fields this tool does not own.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/domain/version"
	"github.com/poruru/release-sweep/cli/internal/infra/fileops"
)

// Load reads, validates, and decodes the manifest at path.
func Load(path string) (*matrix.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save encodes m and replaces path atomically.
func Save(path string, m *matrix.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := fileops.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// Decode validates data and builds the typed manifest.
func Decode(data []byte) (*matrix.Manifest, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	rootOrder, err := objectKeys(data)
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	m := &matrix.Manifest{
		SupportedImages: map[string]matrix.ProductEntry{},
		Extra:           map[string]json.RawMessage{},
		KeyOrder:        rootOrder,
	}
	for key, raw := range root {
		if key != matrix.KeySupportedImages {
			m.Extra[key] = raw
			continue
		}
		var products map[string]json.RawMessage
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("decode %s: %w", matrix.KeySupportedImages, err)
		}
		if m.ProductOrder, err = objectKeys(raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", matrix.KeySupportedImages, err)
		}
		for name, productRaw := range products {
			entry, err := decodeProduct(productRaw)
			if err != nil {
				return nil, fmt.Errorf("decode product %s: %w", name, err)
			}
			m.SupportedImages[name] = entry
		}
	}
	return m, nil
}

func decodeProduct(raw json.RawMessage) (matrix.ProductEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return matrix.ProductEntry{}, err
	}

	order, err := objectKeys(raw)
	if err != nil {
		return matrix.ProductEntry{}, err
	}

	entry := matrix.ProductEntry{Kind: matrix.KindOpaque, KeyOrder: order}
	if mappingRaw, ok := fields[matrix.KeyOpsManagerMapping]; ok {
		mapping, err := decodeMapping(mappingRaw)
		if err != nil {
			return matrix.ProductEntry{}, fmt.Errorf("%s: %w", matrix.KeyOpsManagerMapping, err)
		}
		entry.Kind = matrix.KindOpsManagerMapping
		entry.Mapping = mapping
		delete(fields, matrix.KeyOpsManagerMapping)
	} else if versionsRaw, ok := fields[matrix.KeyVersions]; ok {
		var versions []string
		if err := json.Unmarshal(versionsRaw, &versions); err != nil {
			return matrix.ProductEntry{}, fmt.Errorf("%s: %w", matrix.KeyVersions, err)
		}
		entry.Kind = matrix.KindVersionList
		entry.Versions = versions
		delete(fields, matrix.KeyVersions)
	}
	if len(fields) > 0 {
		entry.Extra = fields
	}
	return entry, nil
}

func decodeMapping(raw json.RawMessage) (matrix.OpsManagerMapping, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return matrix.OpsManagerMapping{}, err
	}

	order, err := objectKeys(raw)
	if err != nil {
		return matrix.OpsManagerMapping{}, err
	}

	mapping := matrix.OpsManagerMapping{
		OpsManager:  map[string]matrix.AgentPairing{},
		RawPairings: map[string]json.RawMessage{},
		KeyOrder:    order,
	}

	var agent, tools string
	_, hasAgent := fields[matrix.KeyBaselineAgent]
	_, hasTools := fields[matrix.KeyBaselineTools]
	if hasAgent {
		if err := json.Unmarshal(fields[matrix.KeyBaselineAgent], &agent); err != nil {
			return matrix.OpsManagerMapping{}, fmt.Errorf("%s: %w", matrix.KeyBaselineAgent, err)
		}
		delete(fields, matrix.KeyBaselineAgent)
	}
	if hasTools {
		if err := json.Unmarshal(fields[matrix.KeyBaselineTools], &tools); err != nil {
			return matrix.OpsManagerMapping{}, fmt.Errorf("%s: %w", matrix.KeyBaselineTools, err)
		}
		delete(fields, matrix.KeyBaselineTools)
	}
	if hasAgent || hasTools {
		mapping.Baseline = &matrix.PinnedPairing{
			Name:    matrix.DefaultBaselineName,
			Pairing: matrix.AgentPairing{AgentVersion: agent, ToolsVersion: tools},
		}
	}

	if omRaw, ok := fields[matrix.KeyOpsManager]; ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(omRaw, &entries); err != nil {
			return matrix.OpsManagerMapping{}, fmt.Errorf("%s: %w", matrix.KeyOpsManager, err)
		}
		if mapping.VersionOrder, err = objectKeys(omRaw); err != nil {
			return matrix.OpsManagerMapping{}, fmt.Errorf("%s: %w", matrix.KeyOpsManager, err)
		}
		for omVersion, pairingRaw := range entries {
			var pairing matrix.AgentPairing
			if err := json.Unmarshal(pairingRaw, &pairing); err != nil {
				return matrix.OpsManagerMapping{}, fmt.Errorf("%s %s: %w", matrix.KeyOpsManager, omVersion, err)
			}
			mapping.OpsManager[omVersion] = pairing
			mapping.RawPairings[omVersion] = pairingRaw
		}
		delete(fields, matrix.KeyOpsManager)
	}
	if len(fields) > 0 {
		mapping.Extra = fields
	}
	return mapping, nil
}

// Encode renders m as indented JSON with a trailing newline. Keys keep the
// order they were decoded in; keys added since then follow in sorted order.
func Encode(m *matrix.Manifest) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	keys := make([]string, 0, len(m.Extra)+1)
	for key := range m.Extra {
		keys = append(keys, key)
	}
	keys = append(keys, matrix.KeySupportedImages)

	root := make(orderedObject, 0, len(keys))
	for _, key := range arrange(m.KeyOrder, keys, sort.Strings) {
		if key == matrix.KeySupportedImages {
			root = append(root, member{key: key, value: encodeProducts(m)})
			continue
		}
		root = append(root, member{key: key, value: m.Extra[key]})
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeProducts(m *matrix.Manifest) orderedObject {
	names := make([]string, 0, len(m.SupportedImages))
	for name := range m.SupportedImages {
		names = append(names, name)
	}
	products := make(orderedObject, 0, len(names))
	for _, name := range arrange(m.ProductOrder, names, sort.Strings) {
		products = append(products, member{key: name, value: encodeProduct(m.SupportedImages[name])})
	}
	return products
}

func encodeProduct(entry matrix.ProductEntry) orderedObject {
	values := make(map[string]any, len(entry.Extra)+1)
	for key, raw := range entry.Extra {
		values[key] = raw
	}
	switch entry.Kind {
	case matrix.KindVersionList:
		versions := entry.Versions
		if versions == nil {
			versions = []string{}
		}
		values[matrix.KeyVersions] = versions
	case matrix.KindOpsManagerMapping:
		values[matrix.KeyOpsManagerMapping] = encodeMapping(entry.Mapping)
	}
	return orderedMembers(entry.KeyOrder, values)
}

func encodeMapping(mapping matrix.OpsManagerMapping) orderedObject {
	values := make(map[string]any, len(mapping.Extra)+3)
	for key, raw := range mapping.Extra {
		values[key] = raw
	}
	if mapping.Baseline != nil {
		values[matrix.KeyBaselineAgent] = mapping.Baseline.Pairing.AgentVersion
		values[matrix.KeyBaselineTools] = mapping.Baseline.Pairing.ToolsVersion
	}
	versions := make([]string, 0, len(mapping.OpsManager))
	for omVersion := range mapping.OpsManager {
		versions = append(versions, omVersion)
	}
	entries := make(orderedObject, 0, len(versions))
	for _, omVersion := range arrange(mapping.VersionOrder, versions, version.SortAscending) {
		if raw, ok := mapping.RawPairings[omVersion]; ok {
			entries = append(entries, member{key: omVersion, value: raw})
			continue
		}
		entries = append(entries, member{key: omVersion, value: mapping.OpsManager[omVersion]})
	}
	values[matrix.KeyOpsManager] = entries
	return orderedMembers(mapping.KeyOrder, values)
}

func orderedMembers(order []string, values map[string]any) orderedObject {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	members := make(orderedObject, 0, len(keys))
	for _, key := range arrange(order, keys, sort.Strings) {
		members = append(members, member{key: key, value: values[key]})
	}
	return members
}

// FileStore exposes Load and Save as a value for workflows that take a store.
type FileStore struct{}

func (FileStore) Load(path string) (*matrix.Manifest, error) {
	return Load(path)
}

func (FileStore) Save(path string, m *matrix.Manifest) error {
	return Save(path, m)
}

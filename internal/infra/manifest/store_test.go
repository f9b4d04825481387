// Where: cli/internal/infra/manifest/store_test.go
// What: Tests for manifest decoding, encoding, and schema validation.
// Why: Trimming writes the manifest back; unrelated fields must survive.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
)

const sampleManifest = `{
  "agentVersion": "108.0.2.8729-1",
  "mongodbToolsBundle": {"ubi": "mongodb-database-tools-rhel88-x86_64-100.12.2.tgz"},
  "supportedImages": {
    "ops-manager": {
      "versions": ["6.0.26", "6.0.27", "7.0.19"],
      "variants": ["ubi"]
    },
    "mongodb-agent": {
      "Description": "agents",
      "opsManagerMapping": {
        "cloud_manager": "13.37.0.9590-1",
        "cloud_manager_tools": "100.12.2",
        "ops_manager": {
          "6.0.27": {"agent_version": "12.0.35.7911-1", "tools_version": "100.10.0"},
          "7.0.19": {"agent_version": "107.0.19.8805-1", "tools_version": "100.12.0", "note": "lts"}
        }
      }
    },
    "mongodb-kubernetes": {"ssdlc_name": "operator"}
  }
}`

func TestDecodeShapes(t *testing.T) {
	m, err := Decode([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	om, ok := m.Product("ops-manager")
	if !ok || om.Kind != matrix.KindVersionList {
		t.Fatalf("ops-manager should be a version list: %+v", om)
	}
	if want := []string{"6.0.26", "6.0.27", "7.0.19"}; !reflect.DeepEqual(om.Versions, want) {
		t.Fatalf("versions=%v, want %v", om.Versions, want)
	}

	mapping, ok := m.Mapping("mongodb-agent")
	if !ok {
		t.Fatal("mongodb-agent should be a mapping")
	}
	if mapping.Baseline == nil || mapping.Baseline.Pairing.AgentVersion != "13.37.0.9590-1" || mapping.Baseline.Pairing.ToolsVersion != "100.12.2" {
		t.Fatalf("unexpected baseline %+v", mapping.Baseline)
	}
	pairing, ok := mapping.Lookup("7.0.19")
	if !ok || pairing.AgentVersion != "107.0.19.8805-1" {
		t.Fatalf("unexpected pairing %+v", pairing)
	}

	operator, ok := m.Product("mongodb-kubernetes")
	if !ok || operator.Kind != matrix.KindOpaque {
		t.Fatalf("operator should be opaque: %+v", operator)
	}
	if _, ok := m.Extra["agentVersion"]; !ok {
		t.Fatal("top-level keys must be preserved")
	}
}

func TestEncodeRoundTripPreservesUnknownFields(t *testing.T) {
	m, err := Decode([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got, want any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}
	if err := json.Unmarshal([]byte(sampleManifest), &want); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip changed the document:\n%s", data)
	}
	if data[len(data)-1] != '\n' {
		t.Fatal("expected trailing newline")
	}
}

func TestEncodeAfterTrimDropsRemovedPairings(t *testing.T) {
	m, err := Decode([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	matrix.TrimManifest(m, matrix.TrimOptions{Products: []string{"mongodb-agent"}, Keep: 1})
	entry := m.SupportedImages["mongodb-agent"]
	delete(entry.Mapping.OpsManager, "6.0.27")
	m.SupportedImages["mongodb-agent"] = entry

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
	mapping, _ := again.Mapping("mongodb-agent")
	if len(mapping.OpsManager) != 1 {
		t.Fatalf("expected 1 pairing, got %v", mapping.OpsManager)
	}
	var raw map[string]string
	if err := json.Unmarshal(mapping.RawPairings["7.0.19"], &raw); err != nil {
		t.Fatalf("decode raw pairing: %v", err)
	}
	if raw["note"] != "lts" {
		t.Fatalf("pairing value must be carried unchanged, got %v", raw)
	}
}

func TestEncodeKeepsDocumentKeyOrder(t *testing.T) {
	doc := `{
  "supportedImages": {
    "ops-manager": {"versions": ["6.0.26", "8.0.1"], "variants": ["ubi"]},
    "mongodb-agent": {
      "opsManagerMapping": {
        "ops_manager": {
          "7.0.19": {"agent_version": "107.0.19.8805-1", "tools_version": "100.12.0"},
          "6.0.27": {"agent_version": "12.0.35.7911-1", "tools_version": "100.10.0"}
        },
        "cloud_manager_tools": "100.12.2",
        "cloud_manager": "13.37.0.9590-1"
      },
      "Description": "agents"
    }
  },
  "agentVersion": "108.0.2.8729-1"
}`
	m, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m.SupportedImages["aaa-new"] = matrix.NewVersionList("1.0.0")
	entry := m.SupportedImages["mongodb-agent"]
	entry.Mapping.OpsManager["8.0.1"] = matrix.AgentPairing{AgentVersion: "108.0.1.8718-1", ToolsVersion: "100.12.0"}
	m.SupportedImages["mongodb-agent"] = entry

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	encoded := string(data)
	wantOrder := []string{
		`"supportedImages"`,
		`"ops-manager"`, `"versions"`, `"variants"`,
		`"mongodb-agent"`, `"opsManagerMapping"`, `"ops_manager"`,
		`"7.0.19"`, `"6.0.27"`, `"8.0.1"`,
		`"cloud_manager_tools"`, `"cloud_manager"`,
		`"Description"`,
		`"aaa-new"`,
		`"agentVersion"`,
	}
	at := 0
	for _, key := range wantOrder {
		i := strings.Index(encoded[at:], key)
		if i == -1 {
			t.Fatalf("%s missing or out of order in:\n%s", key, encoded)
		}
		at += i + len(key)
	}
	if _, err := Decode(data); err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "versions-not-strings", doc: `{"supportedImages": {"ops-manager": {"versions": [6, 7]}}}`},
		{name: "pairing-not-object", doc: `{"supportedImages": {"mongodb-agent": {"opsManagerMapping": {"ops_manager": {"7.0.19": "x"}}}}}`},
		{name: "supported-images-array", doc: `{"supportedImages": []}`},
		{name: "not-json", doc: `{`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode([]byte(tt.doc)); err == nil {
				t.Fatalf("expected error for %s", tt.doc)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.json")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	matrix.TrimManifest(m, matrix.TrimOptions{Products: []string{"ops-manager"}, Floor: "5.0.0", Keep: 1})
	if err := Save(path, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	om, _ := reloaded.Product("ops-manager")
	if want := []string{"5.0.0", "6.0.27", "7.0.19"}; !reflect.DeepEqual(om.Versions, want) {
		t.Fatalf("versions=%v, want %v", om.Versions, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("mode=%v, want 0644", info.Mode().Perm())
	}
}

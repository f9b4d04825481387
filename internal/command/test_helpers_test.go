package command

import (
	"os"
	"testing"
)

func setWorkingDir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd %s: %v", prev, err)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const testManifest = `{
  "supportedImages": {
    "ops-manager": {"versions": ["6.0.25", "6.0.26", "6.0.27", "7.0.19"]},
    "mongodb-agent": {
      "opsManagerMapping": {
        "cloud_manager": "13.37.0.9590-1",
        "cloud_manager_tools": "100.12.2",
        "ops_manager": {
          "6.0.27": {"agent_version": "12.0.35.7911-1", "tools_version": "100.10.0"},
          "7.0.19": {"agent_version": "107.0.19.8805-1", "tools_version": "100.12.0"}
        }
      }
    }
  }
}
`

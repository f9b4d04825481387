// Where: cli/internal/command/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing remains stable.
package command

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	if code := Run(nil, Dependencies{Out: &out}); code != 0 {
		t.Fatalf("exit code=%d", code)
	}
	if !strings.Contains(out.String(), "release-sweep release") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunVersion(t *testing.T) {
	setWorkingDir(t, t.TempDir())
	var out bytes.Buffer
	if code := Run([]string{"version"}, Dependencies{Out: &out}); code != 0 {
		t.Fatalf("exit code=%d", code)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatal("expected a version string")
	}
}

func TestRunParseErrorExitsWithError(t *testing.T) {
	var out bytes.Buffer
	code := Run([]string{"release", "--parallel", "many"}, Dependencies{Out: &out})
	if code != 1 {
		t.Fatalf("exit code=%d, want 1", code)
	}
	if !strings.HasPrefix(out.String(), "✗ ") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunLoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	setWorkingDir(t, dir)
	writeFile(t, dir+"/release.env", "RELEASE_SWEEP_TEST_VALUE=loaded\n")
	t.Setenv("RELEASE_SWEEP_TEST_VALUE", "")
	_ = os.Unsetenv("RELEASE_SWEEP_TEST_VALUE")

	var out bytes.Buffer
	if code := Run([]string{"--env-file", "release.env", "version"}, Dependencies{Out: &out}); code != 0 {
		t.Fatalf("exit code=%d", code)
	}
	if got := os.Getenv("RELEASE_SWEEP_TEST_VALUE"); got != "loaded" {
		t.Fatalf("env value=%q, want loaded", got)
	}
}

func TestExitWithError(t *testing.T) {
	var buf bytes.Buffer
	code := exitWithError(&buf, errReleaseCancelled)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if want := "✗ release cancelled\n"; buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

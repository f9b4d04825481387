// Where: cli/internal/usecase/trim/trim_test.go
// What: Tests for the manifest trim workflow.
// Why: Check mode must never write, and a trimmed manifest must stay untouched.
package trim

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/poruru/release-sweep/cli/internal/domain/matrix"
	"github.com/poruru/release-sweep/cli/internal/infra/ui"
)

type fakeStore struct {
	manifest *matrix.Manifest
	loadErr  error
	saveErr  error
	saved    int
}

func (f *fakeStore) Load(string) (*matrix.Manifest, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.manifest, nil
}

func (f *fakeStore) Save(string, *matrix.Manifest) error {
	f.saved++
	return f.saveErr
}

func testManifest() *matrix.Manifest {
	return &matrix.Manifest{SupportedImages: map[string]matrix.ProductEntry{
		"ops-manager": matrix.NewVersionList("6.0.25", "6.0.26", "6.0.27", "7.0.18", "7.0.19"),
		"mongodb-agent": matrix.NewMappingEntry(matrix.OpsManagerMapping{
			Baseline: &matrix.PinnedPairing{Name: matrix.DefaultBaselineName, Pairing: matrix.AgentPairing{AgentVersion: "13.37.0.9590-1", ToolsVersion: "100.12.2"}},
			OpsManager: map[string]matrix.AgentPairing{
				"6.0.26": {AgentVersion: "12.0.34.7888-1", ToolsVersion: "100.10.0"},
				"6.0.27": {AgentVersion: "12.0.35.7911-1", ToolsVersion: "100.10.0"},
			},
		}),
	}}
}

func newTestWorkflow(store ManifestStore) (Workflow, *bytes.Buffer) {
	var out bytes.Buffer
	return NewWorkflow(store, ui.NewConsoleUI(&out, false), nil), &out
}

func TestRunTrimsAndSaves(t *testing.T) {
	store := &fakeStore{manifest: testManifest()}
	w, out := newTestWorkflow(store)

	report, err := w.Run(Request{ManifestPath: "release.json", Products: []string{"ops-manager", "mongodb-agent"}, Keep: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if store.saved != 1 {
		t.Fatalf("expected one save, got %d", store.saved)
	}
	om, _ := store.manifest.Product("ops-manager")
	if want := []string{"6.0.27", "7.0.19"}; !reflect.DeepEqual(om.Versions, want) {
		t.Fatalf("versions=%v, want %v", om.Versions, want)
	}
	mapping, _ := store.manifest.Mapping("mongodb-agent")
	if want := []string{"6.0.27"}; !reflect.DeepEqual(mapping.Versions(), want) {
		t.Fatalf("mapping versions=%v, want %v", mapping.Versions(), want)
	}
	if mapping.Baseline == nil {
		t.Fatal("baseline must survive trimming")
	}
	if !report.Changed() {
		t.Fatal("expected a changed report")
	}
	if !strings.Contains(out.String(), "6.0.25, 6.0.26, 7.0.18") {
		t.Fatalf("removed versions not reported: %q", out.String())
	}
}

func TestRunCheckModeDoesNotWrite(t *testing.T) {
	store := &fakeStore{manifest: testManifest()}
	w, _ := newTestWorkflow(store)

	_, err := w.Run(Request{ManifestPath: "release.json", Products: []string{"ops-manager"}, Floor: "5.0.0", Keep: 3, Check: true})
	if !errors.Is(err, ErrNotTrimmed) {
		t.Fatalf("err=%v, want ErrNotTrimmed", err)
	}
	if store.saved != 0 {
		t.Fatalf("check mode saved %d times", store.saved)
	}
}

func TestRunAlreadyTrimmedSkipsSave(t *testing.T) {
	store := &fakeStore{manifest: testManifest()}
	w, out := newTestWorkflow(store)

	for _, check := range []bool{false, true} {
		if _, err := w.Run(Request{ManifestPath: "release.json", Products: []string{"mongodb-agent"}, Keep: 3, Check: check}); err != nil {
			t.Fatalf("run check=%v: %v", check, err)
		}
	}
	if store.saved != 0 {
		t.Fatalf("unchanged manifest saved %d times", store.saved)
	}
	if !strings.Contains(out.String(), "already trimmed") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := &fakeStore{manifest: testManifest()}
	w, _ := newTestWorkflow(store)
	req := Request{ManifestPath: "release.json", Products: []string{"ops-manager"}, Floor: "6.0.25", Keep: 1}

	if _, err := w.Run(req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := w.Run(req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Changed() {
		t.Fatalf("second trim changed the manifest: %+v", report)
	}
}

func TestRunErrors(t *testing.T) {
	loadErr := errors.New("boom")
	saveErr := errors.New("disk full")
	tests := []struct {
		name    string
		store   ManifestStore
		path    string
		wantErr error
	}{
		{name: "no store", path: "release.json", wantErr: errStoreNotConfigured},
		{name: "no path", store: &fakeStore{manifest: testManifest()}, wantErr: errManifestPathEmpty},
		{name: "load failure", store: &fakeStore{loadErr: loadErr}, path: "release.json", wantErr: loadErr},
		{name: "save failure", store: &fakeStore{manifest: testManifest(), saveErr: saveErr}, path: "release.json", wantErr: saveErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Workflow{Store: tt.store}
			_, err := w.Run(Request{ManifestPath: tt.path, Products: []string{"ops-manager"}, Keep: 1})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v, want %v", err, tt.wantErr)
			}
		})
	}
}

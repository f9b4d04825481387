// Where: cli/internal/infra/registry/oracle_test.go
// What: Tests for registry manifest existence checks.
// Why: Every failure mode must read as "absent" so publishing falls back to a push.
package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOracle(t *testing.T, handler http.HandlerFunc) (*Oracle, string) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	host := strings.TrimPrefix(server.URL, "https://")
	return &Oracle{Client: server.Client()}, host
}

func TestOracleExistsSendsManifestHead(t *testing.T) {
	var gotMethod, gotPath, gotAccept string
	oracle, host := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	})

	if !oracle.Exists(context.Background(), host+"/mongodb/mongodb-agent", "107.0.19-context") {
		t.Fatal("expected image to exist")
	}
	if gotMethod != http.MethodHead {
		t.Fatalf("method=%s", gotMethod)
	}
	if gotPath != "/v2/mongodb/mongodb-agent/manifests/107.0.19-context" {
		t.Fatalf("path=%s", gotPath)
	}
	if gotAccept != ManifestV2MediaType {
		t.Fatalf("accept=%s", gotAccept)
	}
}

func TestOracleExistsStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "not found", status: http.StatusNotFound, want: false},
		{name: "unauthorized", status: http.StatusUnauthorized, want: false},
		{name: "server error", status: http.StatusInternalServerError, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle, host := newTestOracle(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			if got := oracle.Exists(context.Background(), host+"/repo", "1.0.0"); got != tt.want {
				t.Fatalf("exists=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestOracleExistsTimeoutIsAbsent(t *testing.T) {
	release := make(chan struct{})
	oracle, host := newTestOracle(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if oracle.Exists(ctx, host+"/repo", "1.0.0") {
		t.Fatal("timed out lookup must report absent")
	}
}

func TestOracleExistsUnreachableIsAbsent(t *testing.T) {
	oracle := &Oracle{}
	if oracle.Exists(context.Background(), "127.0.0.1:1/repo", "1.0.0") {
		t.Fatal("unreachable registry must report absent")
	}
}

func TestOracleExistsIncompleteCoordinate(t *testing.T) {
	oracle := &Oracle{}
	if oracle.Exists(context.Background(), "quay.io", "1.0.0") {
		t.Fatal("repository without path must report absent")
	}
	if oracle.Exists(context.Background(), "quay.io/repo", " ") {
		t.Fatal("blank tag must report absent")
	}
}

func TestShouldBypassRegistryProxy(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{host: "localhost:5010", want: true},
		{host: "127.0.0.1", want: true},
		{host: "[::1]:5000", want: true},
		{host: "registry", want: true},
		{host: "quay.io", want: false},
		{host: "", want: false},
	}
	for _, tt := range tests {
		if got := shouldBypassRegistryProxy(tt.host); got != tt.want {
			t.Fatalf("bypass(%q)=%v, want %v", tt.host, got, tt.want)
		}
	}
}

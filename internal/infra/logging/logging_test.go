package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewRespectsVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.verbose)
			logger.Debug("lookup", zap.String("tag", "1.0.0"))
			logger.Warn("push failed")
			_ = logger.Sync()

			out := buf.String()
			if got := strings.Contains(out, "lookup"); got != tt.wantDebug {
				t.Fatalf("debug visible=%v, want %v: %q", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "WARN") || !strings.Contains(out, "push failed") {
				t.Fatalf("warning missing: %q", out)
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected no-op logger")
	}
	logger := zap.NewExample()
	if OrNop(logger) != logger {
		t.Fatal("expected same logger")
	}
}

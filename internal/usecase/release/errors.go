// Where: cli/internal/usecase/release/errors.go
// What: Error types for the release sweep.
// Why: Configuration problems abort immediately; artifact failures are counted.
package release

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errReleaserNotConfigured = errors.New("releaser is not configured")
	errLedgerNotConfigured   = errors.New("ledger is not configured")
	errManifestRequired      = errors.New("release manifest is required")
)

// ConfigurationError reports a manifest or build-matrix inconsistency that
// must be fixed upstream. It is never retried.
type ConfigurationError struct {
	Version string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("configuration error: OM %s: %s", e.Version, e.Reason)
	}
	return "configuration error: " + e.Reason
}

// FailedError summarizes artifact failures collected while keeping going.
type FailedError struct {
	Errs []error
}

func (e *FailedError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, firstLine(err.Error()))
	}
	return fmt.Sprintf("%d releases failed: %s", len(e.Errs), strings.Join(parts, "; "))
}

func (e *FailedError) Unwrap() []error {
	return e.Errs
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx != -1 {
		return msg[:idx]
	}
	return msg
}

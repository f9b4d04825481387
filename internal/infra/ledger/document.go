// Where: cli/internal/infra/ledger/document.go
// What: JSON document shape shared by the file and S3 sinks.
// Why: Keep the exported ledger format identical regardless of destination.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/poruru/release-sweep/cli/internal/domain/release"
)

// Document is the exported ledger.
type Document struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Totals      map[release.Status]int `json:"totals"`
	Records     []release.Record       `json:"records"`
}

// NewDocument builds a Document for records.
func NewDocument(runID string, records []release.Record, now time.Time) Document {
	totals := release.CountByStatus(records)
	if records == nil {
		records = []release.Record{}
	}
	return Document{
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Totals:      totals,
		Records:     records,
	}
}

// Marshal renders doc as indented JSON with a trailing newline.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return buf.Bytes(), nil
}

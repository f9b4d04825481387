// Where: cli/internal/domain/release/ledger.go
// What: Release ledger records and the append-only ledger.
// Why: Every build/publish attempt must be accounted for, including dry runs.
package release

import (
	"sync"
	"time"
)

// ArtifactType names the kind of image a record describes.
type ArtifactType string

const (
	TypeAgent      ArtifactType = "agent"
	TypeOpsManager ArtifactType = "ops-manager"
)

// Status is the outcome of one release attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is one ledger line.
type Record struct {
	RunID     string       `json:"run_id,omitempty"`
	Seq       int          `json:"seq"`
	Type      ArtifactType `json:"type"`
	Version   string       `json:"version"`
	Status    Status       `json:"status"`
	Context   string       `json:"context,omitempty"`
	Digest    string       `json:"digest,omitempty"`
	Images    []string     `json:"images,omitempty"`
	Skipped   []string     `json:"skipped,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Ledger is an append-only, concurrency-safe list of records.
type Ledger struct {
	RunID string
	// OnAppend, when set, receives a snapshot after every append.
	OnAppend func([]Record)
	Now      func() time.Time

	mu      sync.Mutex
	records []Record
}

// NewLedger returns an empty ledger for runID.
func NewLedger(runID string) *Ledger {
	return &Ledger{RunID: runID}
}

// Append stamps and stores r, returning the stored copy.
func (l *Ledger) Append(r Record) Record {
	l.mu.Lock()
	r.RunID = l.RunID
	r.Seq = len(l.records) + 1
	if r.Timestamp.IsZero() {
		r.Timestamp = l.now()
	}
	l.records = append(l.records, r)
	hook := l.OnAppend
	var snapshot []Record
	if hook != nil {
		snapshot = append([]Record(nil), l.records...)
	}
	l.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return r
}

// Records returns a copy of all records in append order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// CountByStatus tallies records per status.
func CountByStatus(records []Record) map[Status]int {
	counts := map[Status]int{}
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// ByType returns the records of type t, keeping their order.
func ByType(records []Record, t ArtifactType) []Record {
	var out []Record
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now().UTC()
}

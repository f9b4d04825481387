package release

import (
	"sync"
	"testing"
	"time"
)

func TestLedgerAppendStampsRecords(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger("run-1")
	ledger.Now = func() time.Time { return fixed }

	var snapshots [][]Record
	ledger.OnAppend = func(records []Record) { snapshots = append(snapshots, records) }

	first := ledger.Append(Record{Type: TypeAgent, Version: "13.37.0", Status: StatusSuccess})
	ledger.Append(Record{Type: TypeOpsManager, Version: "7.0.19", Status: StatusFailed, Error: "boom"})

	if first.RunID != "run-1" || first.Seq != 1 || !first.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected stamped record %+v", first)
	}
	if len(snapshots) != 2 || len(snapshots[1]) != 2 {
		t.Fatalf("unexpected snapshots %v", snapshots)
	}
	counts := CountByStatus(ledger.Records())
	if counts[StatusSuccess] != 1 || counts[StatusFailed] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestByTypeKeepsOrder(t *testing.T) {
	records := []Record{
		{Type: TypeAgent, Version: "13.37.0"},
		{Type: TypeOpsManager, Version: "7.0.19"},
		{Type: TypeAgent, Version: "107.0.19"},
	}
	got := ByType(records, TypeAgent)
	if len(got) != 2 || got[0].Version != "13.37.0" || got[1].Version != "107.0.19" {
		t.Fatalf("unexpected agents %v", got)
	}
	if got := ByType(records[:1], TypeOpsManager); got != nil {
		t.Fatalf("expected no Ops Manager records, got %v", got)
	}
}

func TestLedgerRecordsIsACopy(t *testing.T) {
	ledger := NewLedger("")
	ledger.Append(Record{Type: TypeAgent, Version: "1", Status: StatusPending})
	records := ledger.Records()
	records[0].Status = StatusFailed
	if ledger.Records()[0].Status != StatusPending {
		t.Fatal("mutating the copy must not change the ledger")
	}
}

func TestLedgerConcurrentAppend(t *testing.T) {
	ledger := NewLedger("run")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ledger.Append(Record{Type: TypeAgent, Status: StatusSuccess})
		}()
	}
	wg.Wait()

	records := ledger.Records()
	if len(records) != 50 {
		t.Fatalf("len=%d, want 50", len(records))
	}
	for i, r := range records {
		if r.Seq != i+1 {
			t.Fatalf("record %d has seq %d", i, r.Seq)
		}
	}
}

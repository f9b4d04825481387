package matrix

import (
	"reflect"
	"testing"
)

func TestAllPairingsDeduplicatesAndIncludesBaseline(t *testing.T) {
	mapping := OpsManagerMapping{
		Baseline: &PinnedPairing{Name: "cloud_manager", Pairing: AgentPairing{AgentVersion: "13.2.0", ToolsVersion: "100.9.0"}},
		OpsManager: map[string]AgentPairing{
			"6.0.27": {AgentVersion: "12.0.33", ToolsVersion: "100.9.0"},
			"6.0.26": {AgentVersion: "12.0.33", ToolsVersion: "100.9.0"},
			"7.0.19": {AgentVersion: "13.2.0", ToolsVersion: "100.9.0"},
			"7.0.20": {AgentVersion: "", ToolsVersion: "100.9.0"},
		},
	}
	got := AllPairings(mapping)
	want := []AgentPairing{
		{AgentVersion: "12.0.33", ToolsVersion: "100.9.0"},
		{AgentVersion: "13.2.0", ToolsVersion: "100.9.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AllPairings=%v, want %v", got, want)
	}
}

func TestChangedPairings(t *testing.T) {
	base := OpsManagerMapping{
		Baseline: &PinnedPairing{Pairing: AgentPairing{AgentVersion: "13.1.0", ToolsVersion: "100.8.0"}},
		OpsManager: map[string]AgentPairing{
			"6.0.27": {AgentVersion: "12.0.33", ToolsVersion: "100.9.0"},
			"7.0.19": {AgentVersion: "13.1.0", ToolsVersion: "100.8.0"},
		},
	}
	current := OpsManagerMapping{
		Baseline: &PinnedPairing{Pairing: AgentPairing{AgentVersion: "13.2.0", ToolsVersion: "100.9.0"}},
		OpsManager: map[string]AgentPairing{
			"6.0.27": {AgentVersion: "12.0.33", ToolsVersion: "100.9.0"},
			"7.0.19": {AgentVersion: "13.1.1", ToolsVersion: "100.8.0"},
			"8.0.1":  {AgentVersion: "108.0.1", ToolsVersion: "100.9.0"},
		},
	}

	got := ChangedPairings(current, base)
	want := []AgentPairing{
		{AgentVersion: "13.1.1", ToolsVersion: "100.8.0"},
		{AgentVersion: "13.2.0", ToolsVersion: "100.9.0"},
		{AgentVersion: "108.0.1", ToolsVersion: "100.9.0"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ChangedPairings=%v, want %v", got, want)
	}

	if got := ChangedPairings(base, base); len(got) != 0 {
		t.Fatalf("expected no changes, got %v", got)
	}
}

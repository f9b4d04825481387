package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleMarkersFollowEmojiSetting(t *testing.T) {
	tests := []struct {
		name        string
		emoji       bool
		wantSuccess string
		wantWarn    string
	}{
		{name: "emoji", emoji: true, wantSuccess: "✅ done\n", wantWarn: "⚠️ careful\n"},
		{name: "plain", emoji: false, wantSuccess: "[ok] done\n", wantWarn: "[warn] careful\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewWithEmoji(&buf, tt.emoji)
			c.Success("done")
			if buf.String() != tt.wantSuccess {
				t.Fatalf("success=%q", buf.String())
			}
			buf.Reset()
			c.Warn("careful")
			if buf.String() != tt.wantWarn {
				t.Fatalf("warn=%q", buf.String())
			}
		})
	}
}

func TestConsoleRuleAndItem(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Rule("=")
	c.Item("Manifest", "release.json")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != strings.Repeat("=", RuleWidth) {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "   Manifest:") || !strings.HasSuffix(lines[1], "release.json") {
		t.Fatalf("unexpected item %q", lines[1])
	}
}

func TestConsoleUIBlock(t *testing.T) {
	var buf bytes.Buffer
	u := NewConsoleUI(&buf, false)
	u.Block("🚀", "Release plan", []KeyValue{{Key: "Versions", Value: 3}})

	want := "\nRelease plan\n   " + "Versions:" + strings.Repeat(" ", 22) + "3\n\n"
	if buf.String() != want {
		t.Fatalf("block=%q, want %q", buf.String(), want)
	}
}

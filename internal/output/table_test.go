package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

func assertContains(t *testing.T, name, result string, want ...string) {
	t.Helper()
	for _, expected := range want {
		if !strings.Contains(result, expected) {
			t.Errorf("%s missing expected string %q\nGot:\n%s", name, expected, result)
		}
	}
}

func TestRenderDetectionTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Now()

	detections := []*store.Detection{
		{ID: 1, CapturedAt: now, Material: "Platinum", Percentage: 38.2, ContentTier: store.TierHigh, Surface: true, Remaining: 100},
		{ID: 2, CapturedAt: now, Material: "Painite", Percentage: 100, Motherlode: true, Deepcore: true, ContentTier: store.TierHigh, Remaining: 100},
		{ID: 3, CapturedAt: now, Material: "Bromellite", Percentage: 5, ContentTier: store.TierLow, Surface: true, Remaining: 80},
	}
	configs := []*store.MaterialConfig{
		{Material: "Platinum", MinPercentage: 20, TrackSurface: true, Enabled: true},
		{Material: "Painite", MinPercentage: 0, TrackDeepcore: true, Enabled: true},
	}

	result := RenderDetectionTable(detections, configs)
	assertContains(t, "RenderDetectionTable()", result,
		"Platinum", "38.2%", "surface", "motherlode", "High", "80%", "just now", "✓ tracked")

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, rule and 3 rows, got %d lines", len(lines))
	}
	if strings.Contains(lines[4], "tracked") {
		t.Errorf("untracked Bromellite row flagged: %q", lines[4])
	}

	if got := RenderDetectionTable(nil, configs); !strings.Contains(got, "No unprocessed detections") {
		t.Errorf("empty table = %q", got)
	}
}

func TestRenderMaterialTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := RenderMaterialTable([]*store.MaterialConfig{
		{Material: "Painite", MinPercentage: 25, TargetPrice: 1250000, TrackSurface: true, Enabled: true},
		{Material: "Void Opal", TrackDeepcore: true, Enabled: false},
	})
	assertContains(t, "RenderMaterialTable()", result,
		"Painite", "25.0", "1,250,000 CR", "enabled", "Void Opal", "disabled")

	if got := RenderMaterialTable(nil); !strings.Contains(got, "No materials tracked") {
		t.Errorf("empty table = %q", got)
	}
}

func TestRenderRefinedTable(t *testing.T) {
	result := RenderRefinedTable([]*store.RefinedTotal{
		{Material: "Painite", Category: "mining", Count: 12},
		{Material: "Platinum", Category: "mining", Count: 3},
	})
	assertContains(t, "RenderRefinedTable()", result, "Painite", "12", "Platinum", "Total", "15")

	if got := RenderRefinedTable(nil); !strings.Contains(got, "Nothing refined") {
		t.Errorf("empty table = %q", got)
	}
}

func TestRenderSignalTables(t *testing.T) {
	now := time.Now()

	carriers := RenderCarrierTable([]*store.FleetCarrier{
		{SignalName: "ALPHA (K7Q-BQL)", SystemName: "Sol", LastSeen: now.Add(-2 * time.Hour)},
	})
	assertContains(t, "RenderCarrierTable()", carriers, "ALPHA (K7Q-BQL)", "Sol", "2 hours ago")

	stations := RenderStationTable([]*store.StationSignal{
		{SignalName: "Abraham Lincoln", SignalType: "Outpost", SystemName: "Sol", LastSeen: now.Add(-5 * time.Minute)},
	})
	assertContains(t, "RenderStationTable()", stations, "Abraham Lincoln", "Outpost", "5 minutes ago")

	if got := RenderCarrierTable(nil); !strings.Contains(got, "No fleet carriers") {
		t.Errorf("empty carrier table = %q", got)
	}
	if got := RenderStationTable(nil); !strings.Contains(got, "No stations") {
		t.Errorf("empty station table = %q", got)
	}
}

func TestRenderChatTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := RenderChatTable([]*store.ChatMessage{
		{JournalTimestamp: "2025-11-29T12:00:00Z", Channel: "npc", Sender: "Pirate Lord", Message: "Drop your cargo", Subtype: store.ChatPirate},
		{JournalTimestamp: "not a time", Channel: "local", Sender: "CMDR Jameson", Message: "o7", Subtype: store.ChatSystem},
	})
	assertContains(t, "RenderChatTable()", result,
		"[pirate] Pirate Lord: Drop your cargo", "not a time [system] CMDR Jameson: o7")
}

func TestFormatCredits(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0 CR"},
		{999, "999 CR"},
		{1000, "1,000 CR"},
		{1250000, "1,250,000 CR"},
		{-45000, "-45,000 CR"},
	}
	for _, tt := range tests {
		if got := formatCredits(tt.amount); got != tt.want {
			t.Errorf("formatCredits(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{512, "512 B"},
		{2048, "2 KB"},
		{5 * 1024 * 1024, "5 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-90 * time.Second), "1 minute ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-26 * time.Hour), "1 day ago"},
		{now.Add(-72 * time.Hour), "3 days ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Low Temperature Diamonds", 10); got != "Low Tem..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("Gold", 10); got != "Gold" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("Gold", 2); got != "Go" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestFormatTrackedAlert(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	d := store.Detection{Material: "Painite", Percentage: 32.5, ContentTier: store.TierHigh, Surface: true}
	got := FormatTrackedAlert(d, store.MaterialConfig{Material: "Painite", TargetPrice: 1250000})
	if got != "★ Painite 32.5% (surface, High content), target 1,250,000 CR" {
		t.Errorf("FormatTrackedAlert() = %q", got)
	}

	d = store.Detection{Material: "Painite", Percentage: 100, Motherlode: true, Deepcore: true, ContentTier: store.TierLow}
	got = FormatTrackedAlert(d, store.MaterialConfig{Material: "Painite"})
	if got != "★ Painite 100.0% (motherlode, Low content)" {
		t.Errorf("FormatTrackedAlert() = %q", got)
	}
}

package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

func TestRenderStatus(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	now := time.Date(2025, 11, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hb       *store.Heartbeat
		process  *ProcessInfo
		contains []string
	}{
		{
			name:     "running",
			hb:       &store.Heartbeat{Running: true, PID: 4242, LastHeartbeat: now.Add(-200 * time.Millisecond), PollInterval: 0.5, JournalFile: "/j/Journal.0002.log"},
			process:  &ProcessInfo{RSSBytes: 12 * 1024 * 1024, CPUPercent: 1.5, StartedAt: now.Add(-90 * time.Second)},
			contains: []string{"running (PID 4242)", "500ms", "/j/Journal.0002.log", "12 MB", "1.5%", "1m30s"},
		},
		{
			name:     "stale heartbeat",
			hb:       &store.Heartbeat{Running: true, PID: 4242, LastHeartbeat: now.Add(-5 * time.Second), PollInterval: 0.5},
			contains: []string{"not responding (PID 4242)"},
		},
		{
			name:     "stopped",
			hb:       &store.Heartbeat{Running: false, PollInterval: 0.5},
			contains: []string{"stopped", "never"},
		},
		{
			name:     "no heartbeat",
			contains: []string{"unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderStatus(StatusReport{
				Heartbeat: tt.hb,
				Session:   &store.SessionState{Commander: "Jameson", System: "Sol"},
				Ship:      &store.ShipStatus{CargoCount: 12, CargoCapacity: 256, LimpetCount: 30, Credits: 1250000},
				Process:   tt.process,
				Now:       now,
			})
			assertContains(t, "RenderStatus()", result, tt.contains...)
			assertContains(t, "RenderStatus()", result,
				"Commander:", "Jameson", "Sol", "12 / 256 t", "Limpets:", "30", "1,250,000 CR")
		})
	}
}

func TestRenderStatus_EmptyLogFile(t *testing.T) {
	result := RenderStatus(StatusReport{Session: &store.SessionState{Commander: store.UnknownValue, System: store.UnknownValue}})
	if !strings.Contains(result, "Log file:") || !strings.Contains(result, "—") {
		t.Errorf("expected placeholder for empty log file, got:\n%s", result)
	}
}

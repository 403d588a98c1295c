package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

// ProcessInfo is optional resource usage of the service process.
type ProcessInfo struct {
	RSSBytes   uint64
	CPUPercent float64
	StartedAt  time.Time
}

// StatusReport is everything the status command shows.
type StatusReport struct {
	Heartbeat *store.Heartbeat
	Session   *store.SessionState
	Ship      *store.ShipStatus
	Process   *ProcessInfo
	Now       time.Time
}

// RenderStatus renders the service, session and ship sections.
func RenderStatus(r StatusReport) string {
	now := r.Now
	if now.IsZero() {
		now = time.Now()
	}

	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", label+":", value))
	}

	sb.WriteString("Service\n")
	hb := r.Heartbeat
	switch {
	case hb == nil:
		row("State", colorize(colorGray, "unknown"))
	case hb.Alive(now):
		row("State", colorize(colorGreen, fmt.Sprintf("running (PID %d)", hb.PID)))
	case hb.Running:
		// Flag set but the heartbeat went stale: the process died without
		// shutting down.
		row("State", colorize(colorRed, fmt.Sprintf("not responding (PID %d)", hb.PID)))
	default:
		row("State", colorize(colorYellow, "stopped"))
	}
	if hb != nil {
		row("Heartbeat", formatRelativeTime(hb.LastHeartbeat))
		row("Interval", hb.Interval().String())
		row("Journal", orDash(hb.JournalFile))
	}
	if p := r.Process; p != nil {
		row("Memory", formatSize(p.RSSBytes))
		row("CPU", fmt.Sprintf("%.1f%%", p.CPUPercent))
		if !p.StartedAt.IsZero() {
			row("Uptime", now.Sub(p.StartedAt).Truncate(time.Second).String())
		}
	}

	if s := r.Session; s != nil {
		sb.WriteString("\nSession\n")
		row("Commander", s.Commander)
		row("System", s.System)
		row("Log file", orDash(s.LogFile))
		row("Updated", formatRelativeTime(s.LastUpdated))
	}

	if s := r.Ship; s != nil {
		sb.WriteString("\nShip\n")
		row("Cargo", fmt.Sprintf("%d / %d t", s.CargoCount, s.CargoCapacity))
		row("Limpets", fmt.Sprintf("%d", s.LimpetCount))
		row("Credits", formatCredits(s.Credits))
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// Package output provides terminal output utilities for journalwatch.
//
// This package includes:
//   - Table rendering for detections, tracked materials, refinery totals,
//     signals and chat
//   - The status report for the service, session and ship
//   - A spinner for waits on the background service
//
// Tables use fixed-width columns and ANSI colors only when stdout is a
// terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/journalwatch/internal/store"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderDetectionTable renders prospecting detections. Rows matching one of
// the tracking configs are flagged.
func RenderDetectionTable(detections []*store.Detection, configs []*store.MaterialConfig) string {
	if len(detections) == 0 {
		return "No unprocessed detections.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s %-20s %-8s %-11s %-8s %-10s %-14s %s\n",
		"ID", "Material", "Percent", "Kind", "Content", "Remaining", "Seen", "Tracked"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, d := range detections {
		tracked := ""
		if isTracked(*d, configs) {
			tracked = colorize(colorGreen, "✓ tracked")
		}
		sb.WriteString(fmt.Sprintf("%-6d %-20s %-8s %-11s %-8s %-10s %-14s %s\n",
			d.ID,
			truncate(d.Material, 20),
			fmt.Sprintf("%.1f%%", d.Percentage),
			detectionKind(*d),
			d.ContentTier,
			fmt.Sprintf("%.0f%%", d.Remaining),
			formatRelativeTime(d.CapturedAt),
			tracked))
	}
	return sb.String()
}

// FormatTrackedAlert renders a one-line notice for a detection matching a
// tracking preference.
func FormatTrackedAlert(d store.Detection, cfg store.MaterialConfig) string {
	line := fmt.Sprintf("★ %s %.1f%% (%s, %s content)", d.Material, d.Percentage, detectionKind(d), d.ContentTier)
	if cfg.TargetPrice > 0 {
		line += fmt.Sprintf(", target %s", formatCredits(cfg.TargetPrice))
	}
	return colorize(colorGreen, line)
}

func isTracked(d store.Detection, configs []*store.MaterialConfig) bool {
	for _, c := range configs {
		if c.Matches(d) {
			return true
		}
	}
	return false
}

func detectionKind(d store.Detection) string {
	switch {
	case d.Motherlode:
		return "motherlode"
	case d.Deepcore:
		return "deepcore"
	default:
		return "surface"
	}
}

// RenderMaterialTable renders the tracked material preferences.
func RenderMaterialTable(configs []*store.MaterialConfig) string {
	if len(configs) == 0 {
		return "No materials tracked.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-8s %-14s %-8s %-9s %s\n",
		"Material", "Min %", "Target Price", "Surface", "Deepcore", "Status"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, c := range configs {
		status := colorize(colorGreen, "enabled")
		if !c.Enabled {
			status = colorize(colorGray, "disabled")
		}
		sb.WriteString(fmt.Sprintf("%-20s %-8s %-14s %-8s %-9s %s\n",
			truncate(c.Material, 20),
			fmt.Sprintf("%.1f", c.MinPercentage),
			formatCredits(c.TargetPrice),
			yesNo(c.TrackSurface),
			yesNo(c.TrackDeepcore),
			status))
	}
	return sb.String()
}

// RenderRefinedTable renders refinery totals per material.
func RenderRefinedTable(totals []*store.RefinedTotal) string {
	if len(totals) == 0 {
		return "Nothing refined yet.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-10s %s\n", "Material", "Category", "Count"))
	sb.WriteString(strings.Repeat("─", 44))
	sb.WriteString("\n")

	total := 0
	for _, t := range totals {
		total += t.Count
		sb.WriteString(fmt.Sprintf("%-24s %-10s %d\n", truncate(t.Material, 24), t.Category, t.Count))
	}
	sb.WriteString(strings.Repeat("─", 44))
	sb.WriteString(fmt.Sprintf("\n%-24s %-10s %d\n", "Total", "", total))
	return sb.String()
}

// RenderCarrierTable renders fleet carrier sightings.
func RenderCarrierTable(carriers []*store.FleetCarrier) string {
	if len(carriers) == 0 {
		return "No fleet carriers seen.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-24s %s\n", "Carrier", "System", "Last Seen"))
	sb.WriteString(strings.Repeat("─", 68))
	sb.WriteString("\n")

	for _, fc := range carriers {
		sb.WriteString(fmt.Sprintf("%-28s %-24s %s\n",
			truncate(fc.SignalName, 28),
			truncate(fc.SystemName, 24),
			formatRelativeTime(fc.LastSeen)))
	}
	return sb.String()
}

// RenderStationTable renders station signals.
func RenderStationTable(stations []*store.StationSignal) string {
	if len(stations) == 0 {
		return "No stations seen.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-16s %-24s %s\n", "Station", "Type", "System", "Last Seen"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, st := range stations {
		sb.WriteString(fmt.Sprintf("%-28s %-16s %-24s %s\n",
			truncate(st.SignalName, 28),
			truncate(st.SignalType, 16),
			truncate(st.SystemName, 24),
			formatRelativeTime(st.LastSeen)))
	}
	return sb.String()
}

// RenderChatTable renders chat messages in the order given.
func RenderChatTable(messages []*store.ChatMessage) string {
	if len(messages) == 0 {
		return "No messages.\n"
	}

	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(fmt.Sprintf("%s %s %s: %s\n",
			colorize(colorGray, formatJournalTime(m.JournalTimestamp)),
			colorize(chatColor(m.Subtype), fmt.Sprintf("[%s]", m.Subtype)),
			m.Sender,
			m.Message))
	}
	return sb.String()
}

func chatColor(subtype string) string {
	switch subtype {
	case store.ChatPirate:
		return colorRed
	case store.ChatSecurity:
		return colorYellow
	case store.ChatSquadron, store.ChatFriends:
		return colorGreen
	default:
		return colorGray
	}
}

// formatJournalTime shortens an RFC3339 journal timestamp to clock time.
// Unparsable values are returned as-is.
func formatJournalTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("15:04:05")
}

// formatCredits renders an amount with thousands separators, e.g. "1,250,000 CR".
func formatCredits(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	sb.WriteString(" CR")
	return sb.String()
}

// formatSize converts bytes to human-readable format.
func formatSize(bytes uint64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

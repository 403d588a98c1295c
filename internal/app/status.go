package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
	"github.com/blackwell-systems/journalwatch/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service, session and ship state",
	Long: `Display the ingestion service status and the current session and ship
state from the database.

The service counts as running only when its heartbeat is set and no older
than twice its poll interval. A service that died without shutting down is
reported as not responding.`,
	Example: `  # Check status
  journalwatch status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, st *store.Store) error {
		report, err := buildStatus(cmd.Context(), st)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n\n", cfg.Store.Path)
		fmt.Fprint(cmd.OutOrStdout(), output.RenderStatus(*report))
		return nil
	})
}

func buildStatus(ctx context.Context, st *store.Store) (*output.StatusReport, error) {
	hb, err := st.GetHeartbeat()
	if err != nil {
		return nil, fmt.Errorf("failed to read heartbeat: %w", err)
	}
	session, err := st.GetSession()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	ship, err := st.GetShip()
	if err != nil {
		return nil, fmt.Errorf("failed to read ship status: %w", err)
	}

	report := &output.StatusReport{
		Heartbeat: hb,
		Session:   session,
		Ship:      ship,
		Now:       time.Now(),
	}

	if hb.Alive(report.Now) {
		launcher, err := watcher.NewLauncher(st, "")
		if err == nil {
			if stats, err := launcher.Stats(ctx); err == nil {
				report.Process = &output.ProcessInfo{
					RSSBytes:   stats.RSSBytes,
					CPUPercent: stats.CPUPercent,
					StartedAt:  stats.StartedAt,
				}
			}
		}
	}
	return report, nil
}

package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	detectionsLimit int

	detectionsCmd = &cobra.Command{
		Use:   "detections",
		Short: "List unprocessed prospecting detections",
		Long: `List prospecting detections that no consumer has marked processed yet,
oldest first. Detections matching a tracked material are flagged.

Each prospector scan produces one row per material, plus a motherlode row
when the asteroid has a deep core.`,
		Example: `  # Show the 20 oldest unprocessed detections
  journalwatch detections --limit 20

  # Mark detections as processed
  journalwatch detections mark 12 13`,
		Args: cobra.NoArgs,
		RunE: runDetections,
	}

	detectionsMarkCmd = &cobra.Command{
		Use:   "mark <id>...",
		Short: "Mark detections as processed",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDetectionsMark,
	}
)

func init() {
	detectionsCmd.Flags().IntVar(&detectionsLimit, "limit", 50, "maximum number of detections to show")
	detectionsCmd.AddCommand(detectionsMarkCmd)
}

func runDetections(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		detections, err := st.UnprocessedDetections(detectionsLimit)
		if err != nil {
			return err
		}
		configs, err := st.ListMaterialConfigs()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderDetectionTable(detections, configs))
		return nil
	})
}

func runDetectionsMark(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid detection id %q", arg)
		}
		ids = append(ids, id)
	}

	return withStore(func(_ *config.Config, st *store.Store) error {
		for _, id := range ids {
			if err := st.MarkDetectionProcessed(id); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Marked %d detection(s) processed\n", len(ids))
		return nil
	})
}

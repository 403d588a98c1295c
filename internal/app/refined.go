package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var refinedCmd = &cobra.Command{
	Use:   "refined [material]",
	Short: "Show refinery totals",
	Example: `  # Totals per material
  journalwatch refined

  # Count for one material
  journalwatch refined Painite`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefined,
}

func runRefined(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		if len(args) == 1 {
			n, err := st.RefinedCount(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", args[0], n)
			return nil
		}

		totals, err := st.RefinedTotals()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderRefinedTable(totals))
		return nil
	})
}

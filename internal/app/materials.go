package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	materialMin      float64
	materialPrice    int64
	materialSurface  bool
	materialDeepcore bool
	materialDisable  bool

	materialsCmd = &cobra.Command{
		Use:   "materials",
		Short: "Manage tracked materials",
		Long: `List, set and delete the per-material tracking preferences.

A detection is tracked when its material has an enabled preference, its
percentage is at least the minimum, and its kind is wanted: surface rows
need --surface, deep-core and motherlode rows need --deepcore. The running
service logs tracked detections and announces them in the foreground.`,
		Example: `  # List preferences
  journalwatch materials

  # Track Painite above 25% on the surface and in deep cores
  journalwatch materials set Painite --min 25 --price 1250000

  # Stop tracking
  journalwatch materials delete Painite`,
		Args: cobra.NoArgs,
		RunE: runMaterialsList,
	}

	materialsSetCmd = &cobra.Command{
		Use:   "set <material>",
		Short: "Create or replace a material preference",
		Args:  cobra.ExactArgs(1),
		RunE:  runMaterialsSet,
	}

	materialsDeleteCmd = &cobra.Command{
		Use:     "delete <material>",
		Aliases: []string{"rm"},
		Short:   "Delete a material preference",
		Args:    cobra.ExactArgs(1),
		RunE:    runMaterialsDelete,
	}
)

func init() {
	materialsSetCmd.Flags().Float64Var(&materialMin, "min", 0, "minimum percentage")
	materialsSetCmd.Flags().Int64Var(&materialPrice, "price", 0, "target sell price in credits")
	materialsSetCmd.Flags().BoolVar(&materialSurface, "surface", true, "track surface detections")
	materialsSetCmd.Flags().BoolVar(&materialDeepcore, "deepcore", true, "track deep-core and motherlode detections")
	materialsSetCmd.Flags().BoolVar(&materialDisable, "disable", false, "store the preference disabled")

	materialsCmd.AddCommand(materialsSetCmd)
	materialsCmd.AddCommand(materialsDeleteCmd)
}

func runMaterialsList(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		configs, err := st.ListMaterialConfigs()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderMaterialTable(configs))
		return nil
	})
}

func runMaterialsSet(cmd *cobra.Command, args []string) error {
	if materialMin < 0 || materialMin > 100 {
		return fmt.Errorf("--min must be between 0 and 100, got %g", materialMin)
	}
	if materialPrice < 0 {
		return fmt.Errorf("--price cannot be negative")
	}

	mc := &store.MaterialConfig{
		Material:      args[0],
		MinPercentage: materialMin,
		TargetPrice:   materialPrice,
		TrackSurface:  materialSurface,
		TrackDeepcore: materialDeepcore,
		Enabled:       !materialDisable,
	}
	return withStore(func(_ *config.Config, st *store.Store) error {
		if err := st.SaveMaterialConfig(mc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Tracking %s\n", mc.Material)
		return nil
	})
}

func runMaterialsDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		if err := st.DeleteMaterialConfig(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
		return nil
	})
}

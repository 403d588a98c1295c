package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	signalsCarriers bool
	signalsStations bool

	signalsCmd = &cobra.Command{
		Use:   "signals",
		Short: "List fleet carriers and stations seen in signal scans",
		Example: `  # Carriers and stations
  journalwatch signals

  # Carriers only
  journalwatch signals --carriers`,
		Args: cobra.NoArgs,
		RunE: runSignals,
	}
)

func init() {
	signalsCmd.Flags().BoolVar(&signalsCarriers, "carriers", false, "show fleet carriers only")
	signalsCmd.Flags().BoolVar(&signalsStations, "stations", false, "show stations only")
	signalsCmd.MarkFlagsMutuallyExclusive("carriers", "stations")
}

func runSignals(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		out := cmd.OutOrStdout()
		if !signalsStations {
			carriers, err := st.ListFleetCarriers()
			if err != nil {
				return err
			}
			fmt.Fprint(out, output.RenderCarrierTable(carriers))
		}
		if !signalsCarriers {
			if !signalsStations {
				fmt.Fprintln(out)
			}
			stations, err := st.ListStations()
			if err != nil {
				return err
			}
			fmt.Fprint(out, output.RenderStationTable(stations))
		}
		return nil
	})
}

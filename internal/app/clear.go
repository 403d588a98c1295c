package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var clearCmd = &cobra.Command{
	Use:       "clear <detections|refined|chat|all>",
	Short:     "Delete accumulated history",
	Long:      `Delete prospecting detections, refinery events or chat messages. Session, ship, signal and tracking data are kept.`,
	Example:   `  journalwatch clear detections`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"detections", "refined", "chat", "all"},
	RunE:      runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		targets := map[string]func() error{
			"detections": st.ClearDetections,
			"refined":    st.ClearRefined,
			"chat":       st.ClearChat,
		}

		names := []string{args[0]}
		if args[0] == "all" {
			names = []string{"detections", "refined", "chat"}
		}
		for _, name := range names {
			if err := targets[name](); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", name)
		}
		return nil
	})
}

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/journalwatch/internal/config"
	"github.com/blackwell-systems/journalwatch/internal/output"
	"github.com/blackwell-systems/journalwatch/internal/store"
)

var (
	chatSince string

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Show received chat messages",
		Long: `Show received chat messages oldest first. With --since only messages
whose journal timestamp is strictly later than the cursor are shown, so the
timestamp of the last message printed can be passed back to page forward.`,
		Example: `  # Everything
  journalwatch chat

  # Only messages after a cursor
  journalwatch chat --since 2025-11-29T12:00:00Z`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
)

func init() {
	chatCmd.Flags().StringVar(&chatSince, "since", "", "journal timestamp cursor (exclusive)")
}

func runChat(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		messages, err := st.ChatSince(chatSince)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), output.RenderChatTable(messages))
		return nil
	})
}

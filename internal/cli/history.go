package cli

import (
	"fmt"
	"strconv"

	"github.com/huimingz/commit-composer/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyAutoYes bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect generated commit messages",
	Long:  `Commands for listing, summarizing and clearing the commit message history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.ListRecent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return ui.ShowHistory(records, cmd.OutOrStdout())
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return ui.ShowStats(stats, cmd.OutOrStdout())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored message",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if !historyAutoYes {
			confirmed, err := ui.Confirm("Delete all commit message history?", cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ History cleared.")
		return nil
	},
}

var historyUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Mark a message as used",
	Long:  `Mark a stored message as committed, for messages copied into a commit by hand.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.MarkUsed(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked #%d as used.\n", id)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of messages to show")
	historyClearCmd.Flags().BoolVarP(&historyAutoYes, "yes", "y", false, "Clear without prompting")

	historyCmd.AddCommand(historyListCmd, historyStatsCmd, historyClearCmd, historyUseCmd)
	rootCmd.AddCommand(historyCmd)
}

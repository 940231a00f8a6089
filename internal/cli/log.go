package cli

import (
	"fmt"

	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logCount int
	logPath  string

	changesPath string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent commits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		commits := git.NewExtractor().RecentCommits(cmd.Context(), logPath, logCount)
		return ui.ShowCommits(commits, cmd.OutOrStdout())
	},
}

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show unstaged changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := git.NewExtractor().UnstagedChanges(cmd.Context(), changesPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !wd.HasChanges {
			fmt.Fprintln(out, "No unstaged changes.")
			return nil
		}
		fmt.Fprintln(out, wd.DiffText)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logCount, "count", "n", git.DefaultRecentCommitCount, "Number of commits to show")
	logCmd.Flags().StringVarP(&logPath, "path", "p", ".", "Repository path")
	changesCmd.Flags().StringVarP(&changesPath, "path", "p", ".", "Repository path")

	rootCmd.AddCommand(logCmd, changesCmd)
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/huimingz/commit-composer/internal/composer"
	"github.com/huimingz/commit-composer/internal/log"
	"github.com/huimingz/commit-composer/internal/pipeline"
	"github.com/huimingz/commit-composer/internal/ui"
	"github.com/spf13/cobra"
)

var (
	commitLanguage string
	commitStyle    string
	commitPath     string
	commitAutoYes  bool
	commitDryRun   bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate and create a commit",
	Long: `Generate a commit message using AI based on staged changes.

This command will:
1. Analyze your staged changes (git diff --cached)
2. Generate a commit message following Conventional Commits
3. Save it to the history
4. Ask for confirmation before committing

Examples:
  composer commit
  composer commit --style emoji
  composer commit --language zh
  composer commit --path ../other-repo --dry-run
  composer commit -m deepseek`,
	Args: cobra.NoArgs,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitLanguage, "language", "l", "", languageFlagUsage())
	commitCmd.Flags().StringVarP(&commitStyle, "style", "s", "", "Message style: concise, detailed or emoji")
	commitCmd.Flags().StringVarP(&commitPath, "path", "p", ".", "Repository path")
	commitCmd.Flags().BoolVarP(&commitAutoYes, "yes", "y", false, "Auto-confirm the commit without prompting")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "Generate and save the message without committing")
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx, cancel := withInterrupt(cmd.Context())
	defer cancel()
	cmd.SilenceErrors = false

	out := cmd.OutOrStdout()
	startTime := time.Now()
	printer := ui.NewPrinter(out, ui.WithColor(!color.NoColor), ui.WithVerbose(debugMode))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(ctx, cfg, commitLanguage)
	if err != nil {
		return err
	}
	defer cleanup()

	_ = printer.PrintThinking("Starting commit message generation...")
	_ = printer.PrintDetail(fmt.Sprintf("Repository: %s", commitPath))
	if mc, err := cfg.GetModel(modelName); err == nil {
		_ = printer.PrintDetail(fmt.Sprintf("Model: %s (%s)", mc.Model, mc.Provider))
	}

	_ = printer.PrintStep(1, "Analyzing staged changes")

	var res *pipeline.Result
	if commitStyle != "" {
		style := composer.ParseStyle(commitStyle)
		_ = printer.PrintStep(2, fmt.Sprintf("Generating %s commit message", style))
		_ = printer.PrintProgress("Waiting for the model...")
		res, err = svc.Regenerate(ctx, commitPath, style)
	} else {
		_ = printer.PrintStep(2, "Generating commit message")
		_ = printer.PrintProgress("Waiting for the model...")
		res, err = svc.Analyze(ctx, commitPath)
	}
	if errors.Is(err, pipeline.ErrNoStagedChanges) {
		fmt.Fprintln(out, "No staged changes found.")
		fmt.Fprintln(out, "\nTo stage changes, use:")
		fmt.Fprintln(out, "  git add <file>")
		fmt.Fprintln(out, "  git add -A")
		return nil
	}
	if err != nil {
		return reportFailure(cmd, printer, fmt.Errorf("failed to generate commit message: %w", err))
	}
	log.Debug("Saved history record %d", res.ID)

	if err := ui.ShowCommitMessage(res.Message, out); err != nil {
		return err
	}
	if res.Fallback {
		_ = printer.PrintWarning("The model was unavailable; this message was built from the file list.")
	}

	_ = printer.PrintStats(&ui.ExecutionStats{
		StartTime:  startTime,
		EndTime:    time.Now(),
		Files:      len(res.Files),
		Insertions: res.Insertions,
		Deletions:  res.Deletions,
	})

	if commitDryRun {
		_ = printer.PrintInfo(fmt.Sprintf("Dry run: saved as history #%d, nothing committed", res.ID))
		return nil
	}

	if !commitAutoYes {
		_ = printer.Newline()
		confirmed, err := ui.ConfirmWithDefault("Do you want to commit with this message?", true, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Commit cancelled.")
			return nil
		}
	}

	if err := svc.Commit(ctx, commitPath, res.ID); err != nil {
		return reportFailure(cmd, printer, fmt.Errorf("failed to create commit: %w", err))
	}

	_ = printer.PrintSuccess("Commit created successfully!")
	return nil
}

// reportFailure prints err through the printer and keeps cobra from printing it again
func reportFailure(cmd *cobra.Command, printer *ui.Printer, err error) error {
	_ = printer.PrintError(err.Error())
	cmd.SilenceErrors = true
	return err
}

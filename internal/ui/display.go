package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/huimingz/commit-composer/internal/git"
	"github.com/huimingz/commit-composer/internal/history"
)

const subjectWidth = 60

// ShowHistory prints stored messages as a table, most recent first
func ShowHistory(records []history.Record, output io.Writer) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(output, "No commit messages in history.")
		return err
	}

	bold := color.New(color.Bold)
	if _, err := bold.Fprintln(output, "\n📜 Commit History:"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tUSED\tCREATED\tSUBJECT")
	for _, r := range records {
		used := ""
		if r.Used {
			used = "✓"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, used, r.CreatedAt.Local().Format(time.DateTime), subjectLine(r.Message))
	}
	return tw.Flush()
}

// ShowStats prints history statistics
func ShowStats(stats history.Stats, output io.Writer) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	if _, err := bold.Fprintln(output, "\n📊 History Statistics:"); err != nil {
		return err
	}
	if _, err := cyan.Fprintf(output, "  Generated:        %d\n", stats.TotalGenerated); err != nil {
		return err
	}
	if _, err := cyan.Fprintf(output, "  Used:             %d\n", stats.TotalUsed); err != nil {
		return err
	}
	_, err := cyan.Fprintf(output, "  Most common type: %s\n", stats.MostCommonType)
	return err
}

// ShowCommits prints recent repository commits
func ShowCommits(commits []git.CommitEntry, output io.Writer) error {
	if len(commits) == 0 {
		_, err := fmt.Fprintln(output, "No commits found.")
		return err
	}

	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)
	for _, c := range commits {
		hash := c.Hash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if _, err := yellow.Fprintf(output, "%s ", hash); err != nil {
			return err
		}
		if _, err := fmt.Fprint(output, c.Message); err != nil {
			return err
		}
		if _, err := dim.Fprintf(output, " (%s, %s)\n", c.Author, c.RelativeDate); err != nil {
			return err
		}
	}
	return nil
}

// subjectLine returns the first line of message, shortened for tables
func subjectLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	runes := []rune(line)
	if len(runes) > subjectWidth {
		return string(runes[:subjectWidth-3]) + "..."
	}
	return line
}

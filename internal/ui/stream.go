package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// ExecutionStats holds statistics about one generation run
type ExecutionStats struct {
	StartTime  time.Time
	EndTime    time.Time
	Files      int
	Insertions int
	Deletions  int
}

// Duration returns the execution duration
func (s *ExecutionStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// PrinterOption is a functional option for Printer
type PrinterOption func(*Printer)

// WithColor enables or disables color output
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.colorEnabled = enabled
	}
}

// WithVerbose enables or disables verbose mode
func WithVerbose(verbose bool) PrinterOption {
	return func(p *Printer) {
		p.verbose = verbose
	}
}

// Printer writes progress output to the terminal
type Printer struct {
	writer       io.Writer
	colorEnabled bool
	verbose      bool
}

// NewPrinter creates a new Printer
func NewPrinter(writer io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		writer:       writer,
		colorEnabled: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Printer) printf(attr color.Attribute, format string, args ...interface{}) error {
	if p.colorEnabled {
		_, err := color.New(attr).Fprintf(p.writer, format, args...)
		return err
	}
	_, err := fmt.Fprintf(p.writer, format, args...)
	return err
}

// PrintThinking prints a status line
func (p *Printer) PrintThinking(message string) error {
	return p.printf(color.FgHiBlack, "💭 %s\n", message)
}

// PrintStep prints a step in the process
func (p *Printer) PrintStep(step int, message string) error {
	return p.printf(color.FgBlue, "📋 Step %d: %s\n", step, message)
}

// PrintProgress prints a progress message
func (p *Printer) PrintProgress(message string) error {
	return p.printf(color.FgYellow, "⏳ %s\n", message)
}

// PrintDetail prints a message only in verbose mode
func (p *Printer) PrintDetail(message string) error {
	if !p.verbose {
		return nil
	}
	return p.printf(color.FgHiBlack, "   %s\n", message)
}

// PrintInfo prints an info message
func (p *Printer) PrintInfo(message string) error {
	return p.printf(color.FgCyan, "ℹ️  %s\n", message)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	return p.printf(color.FgGreen, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(message string) error {
	return p.printf(color.FgYellow, "⚠️  %s\n", message)
}

// PrintError prints an error message
func (p *Printer) PrintError(message string) error {
	return p.printf(color.FgRed, "❌ Error: %s\n", message)
}

// PrintStats prints execution statistics
func (p *Printer) PrintStats(stats *ExecutionStats) error {
	if stats == nil {
		return nil
	}

	return p.printf(color.FgHiBlack, "\n📊 Stats: %d files (+%d -%d) | Time: %s\n",
		stats.Files, stats.Insertions, stats.Deletions, formatDuration(stats.Duration()))
}

// Newline prints a newline
func (p *Printer) Newline() error {
	_, err := fmt.Fprintln(p.writer)
	return err
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

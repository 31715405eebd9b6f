// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui renders styled terminal output for the CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meshintel/citemaster/pkg/types"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Printer writes styled messages to a terminal. Styling is dropped when
// color is disabled; everything except errors and results is dropped when
// quiet is set.
type Printer struct {
	w     io.Writer
	color bool
	quiet bool
}

// NewPrinter constructs a Printer honoring the UI configuration.
func NewPrinter(w io.Writer, cfg types.UIConfig) *Printer {
	return &Printer{w: w, color: cfg.Color, quiet: cfg.Quiet}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Success prints a positive status line.
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, p.render(successStyle, fmt.Sprintf(format, args...)))
}

// Warning prints a cautionary status line.
func (p *Printer) Warning(format string, args ...any) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, p.render(warningStyle, fmt.Sprintf(format, args...)))
}

// Error prints a failure line. Not suppressed by quiet.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(errorStyle, fmt.Sprintf(format, args...)))
}

// Header prints a section header.
func (p *Printer) Header(text string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.w, p.render(headerStyle, text))
}

// Result prints pipeline output (a citation or BibTeX block). Never styled
// and never suppressed, so output stays pipeable.
func (p *Printer) Result(text string) {
	fmt.Fprintln(p.w, text)
}

// Summary prints the batch statistics block.
func (p *Printer) Summary(stats types.BatchStats) {
	if p.quiet {
		return
	}
	p.Header("Batch summary")
	fmt.Fprintf(p.w, "  Total:     %d\n", stats.Total)
	if stats.Succeeded > 0 {
		fmt.Fprintf(p.w, "  %s %d\n", p.render(successStyle, "Succeeded:"), stats.Succeeded)
	}
	if stats.Failed > 0 {
		fmt.Fprintf(p.w, "  %s    %d\n", p.render(errorStyle, "Failed:"), stats.Failed)
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(p.w, "  %s   %d\n", p.render(mutedStyle, "Skipped:"), stats.Skipped)
	}
	fmt.Fprintf(p.w, "  Success rate: %.1f%%\n", stats.SuccessRate()*100)
	fmt.Fprintf(p.w, "  Elapsed: %.2fs\n", stats.Elapsed.Seconds())
}

// FailureDetails lists failed titles with their reasons, capped to keep the
// terminal readable; the error log carries the full list.
func (p *Printer) FailureDetails(outcomes []types.Outcome, max int) {
	var failed []types.Outcome
	for _, out := range outcomes {
		if out.Status == types.OutcomeFailed {
			failed = append(failed, out)
		}
	}
	if len(failed) == 0 {
		return
	}
	if len(failed) > max {
		p.Error("%d titles failed; see the error log for details", len(failed))
		return
	}
	for _, out := range failed {
		p.Error("  %s: %s", truncate(out.Title, 50), out.Reason)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}

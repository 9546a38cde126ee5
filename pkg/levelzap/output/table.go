package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// Color constants using the ANSI 256-color palette.
const (
	// ColorPrimary is used for headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for positive status indicators (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for skips and non-reversible counts (orange).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for failures (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMuted)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	dangerStyle = lipgloss.NewStyle().Foreground(ColorDanger)
	okStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
)

// TableFormatter renders a styled table for interactive terminals.
type TableFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch {
	case r.Report != nil:
		return f.formatReport(w, r)
	case r.Analysis != nil:
		return f.formatAnalysis(w, r.Analysis)
	case r.Validity != nil:
		return f.formatValidity(w, r)
	default:
		return f.formatLogs(w, r)
	}
}

func (f *TableFormatter) formatReport(w *bytes.Buffer, r *Result) error {
	rep := r.Report

	title := r.Mode
	if r.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render(title), r.Root)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label string, n int, style lipgloss.Style) {
		if n != 0 {
			fmt.Fprintf(tw, "%s\t%s\n", label, style.Render(fmt.Sprintf("%d", n)))
		}
	}
	row("Moved", rep.Moved, okStyle)
	row("Renamed", rep.Renamed, okStyle)
	row("Overwritten", rep.Overwritten, warnStyle)
	row("Skipped", rep.Skipped, warnStyle)
	row("Removed dirs", rep.RemovedDirs, okStyle)
	row("Removed files", rep.RemovedFiles, okStyle)
	row("Restored", rep.Restored, okStyle)
	row("Non-reversible", rep.NonReversible, warnStyle)
	row("Failed", rep.Failed, dangerStyle)
	if rep.TotalBytes > 0 {
		fmt.Fprintf(tw, "Total\t%s\n", rep.HumanBytes())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.FailedPaths) > 0 {
		fmt.Fprintf(w, "\n%s\n", dangerStyle.Render("Failed paths:"))
		for _, p := range rep.FailedPaths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	if r.JournalID != "" {
		fmt.Fprintf(w, "\nJournal: %s\n", r.JournalID)
	}
	return nil
}

func (f *TableFormatter) formatAnalysis(w *bytes.Buffer, a *types.Analysis) error {
	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render("analyze"), a.Root)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Files\t%d\n", a.Files)
	fmt.Fprintf(tw, "Dirs\t%d\n", a.Dirs)
	fmt.Fprintf(tw, "Size\t%s\n", types.FormatSize(a.TotalBytes))
	if a.MinSize > 0 {
		fmt.Fprintf(tw, "Min size\t%s\n", types.FormatSize(a.MinSize))
	}
	return tw.Flush()
}

func (f *TableFormatter) formatValidity(w *bytes.Buffer, r *Result) error {
	v := r.Validity
	status := okStyle.Render("valid")
	if !v.Valid {
		status = dangerStyle.Render("corrupt")
	}
	fmt.Fprintf(w, "%s  %s  %d actions\n", titleStyle.Render(v.ID), status, v.ActionCount)
	for _, p := range v.Problems {
		fmt.Fprintf(w, "  %s %s\n", dangerStyle.Render("!"), p)
	}
	return nil
}

func (f *TableFormatter) formatLogs(w *bytes.Buffer, r *Result) error {
	if len(r.Logs) == 0 {
		fmt.Fprintln(w, "No journals found.")
		return nil
	}

	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render("journals"), r.Root)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerStyle.Render(strings.Join([]string{"ID", "CREATED", "ACTIONS", "STATUS"}, "\t")))
	for _, l := range r.Logs {
		status := summaryStatus(l)
		switch status {
		case "dry-run":
			status = warnStyle.Render(status)
		case "reverted":
			status = okStyle.Render(status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			l.ID, l.CreatedAt.Format("2006-01-02 15:04:05"), l.ActionCount, status)
	}
	return tw.Flush()
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)

package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

// PlainFormatter formats output as simple aligned text.
// It produces plain output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch {
	case r.Report != nil:
		return f.formatReport(w, r)
	case r.Analysis != nil:
		return f.formatAnalysis(w, r.Analysis)
	case r.Validity != nil:
		return f.formatValidity(w, r.Validity)
	default:
		return f.formatLogs(w, r.Logs)
	}
}

func (f *PlainFormatter) formatReport(w *bytes.Buffer, r *Result) error {
	rep := r.Report

	mode := r.Mode
	if r.DryRun {
		mode += " (dry run)"
	}
	fmt.Fprintf(w, "%s: %s\n", mode, r.Root)

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	write := func(label string, n int) {
		if n != 0 {
			fmt.Fprintf(tw, "%s\t%d\n", label, n)
		}
	}
	write("moved", rep.Moved)
	write("renamed", rep.Renamed)
	write("overwritten", rep.Overwritten)
	write("skipped", rep.Skipped)
	write("removed dirs", rep.RemovedDirs)
	write("removed files", rep.RemovedFiles)
	write("restored", rep.Restored)
	write("non-reversible", rep.NonReversible)
	write("failed", rep.Failed)
	if rep.TotalBytes > 0 {
		fmt.Fprintf(tw, "total\t%s\n", rep.HumanBytes())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, p := range rep.FailedPaths {
		fmt.Fprintf(w, "failed: %s\n", p)
	}
	if r.JournalID != "" {
		fmt.Fprintf(w, "journal: %s\n", r.JournalID)
	}
	return nil
}

func (f *PlainFormatter) formatAnalysis(w *bytes.Buffer, a *types.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "root\t%s\n", a.Root)
	fmt.Fprintf(tw, "files\t%d\n", a.Files)
	fmt.Fprintf(tw, "dirs\t%d\n", a.Dirs)
	fmt.Fprintf(tw, "size\t%s\n", types.FormatSize(a.TotalBytes))
	if a.MinSize > 0 {
		fmt.Fprintf(tw, "min size\t%s\n", types.FormatSize(a.MinSize))
	}
	return tw.Flush()
}

func (f *PlainFormatter) formatValidity(w *bytes.Buffer, v *journal.ValidityReport) error {
	status := "valid"
	if !v.Valid {
		status = "corrupt"
	}
	fmt.Fprintf(w, "%s %s (%d actions)\n", v.ID, status, v.ActionCount)
	for _, p := range v.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
	return nil
}

func (f *PlainFormatter) formatLogs(w *bytes.Buffer, logs []journal.Summary) error {
	if len(logs) == 0 {
		w.WriteString("no journals found\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tACTIONS\tSTATUS")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			l.ID, l.CreatedAt.Format("2006-01-02 15:04:05"), l.ActionCount, summaryStatus(l))
	}
	return tw.Flush()
}

// summaryStatus renders the listing status column for a journal.
func summaryStatus(l journal.Summary) string {
	switch {
	case l.DryRun:
		return "dry-run"
	case l.Reverted:
		return "reverted"
	default:
		return "active"
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)

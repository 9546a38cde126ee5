package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dterracino/levelzap/pkg/levelzap/journal"
	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

func TestTableFormatter_Report(t *testing.T) {
	formatter := &TableFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode:      "flatten",
		Root:      "/home/user/inbox",
		JournalID: "run-x",
		Report: &types.Report{
			Moved:         3,
			NonReversible: 1,
			TotalBytes:    2048,
		},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "flatten")
	assert.Contains(t, out, "/home/user/inbox")
	assert.Contains(t, out, "Moved")
	assert.Contains(t, out, "Non-reversible")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "Journal: run-x")
	assert.NotContains(t, out, "Skipped")
}

func TestTableFormatter_Analysis(t *testing.T) {
	formatter := &TableFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode:     "analyze",
		Analysis: &types.Analysis{Root: "/tmp/x", Files: 7, Dirs: 2, TotalBytes: 512, MinSize: 1024},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Files")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "512 B")
	assert.Contains(t, out, "Min size")
	assert.Contains(t, out, "1.0 KiB")
}

func TestTableFormatter_Logs(t *testing.T) {
	formatter := &TableFormatter{}
	var buf bytes.Buffer

	created := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	result := &Result{
		Mode: "logs",
		Root: "/tmp/x",
		Logs: []journal.Summary{
			{ID: "run-a", CreatedAt: created, ActionCount: 4},
			{ID: "run-b", CreatedAt: created, ActionCount: 2, Reverted: true},
		},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "reverted")
	assert.Contains(t, out, "ACTIONS")
}

func TestTableFormatter_NoLogs(t *testing.T) {
	formatter := &TableFormatter{}
	var buf bytes.Buffer

	require.NoError(t, formatter.Format(&buf, &Result{Mode: "logs"}))
	assert.Contains(t, buf.String(), "No journals found.")
}

func TestTableFormatter_Validity(t *testing.T) {
	formatter := &TableFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode: "verify",
		Validity: &journal.ValidityReport{
			ID:       "run-bad",
			Problems: []string{"missing root path"},
		},
	}

	require.NoError(t, formatter.Format(&buf, result))
	out := buf.String()
	assert.Contains(t, out, "run-bad")
	assert.Contains(t, out, "corrupt")
	assert.Contains(t, out, "missing root path")
}

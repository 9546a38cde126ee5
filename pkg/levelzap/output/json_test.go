package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

func TestJSONFormatter_Report(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode:      "flatten",
		Root:      "/home/user/inbox",
		JournalID: "run-x",
		Report: &types.Report{
			Moved:      3,
			Skipped:    1,
			TotalBytes: 42,
		},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	// Output is valid JSON round-trippable into a map.
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "flatten", parsed["mode"])
	assert.Equal(t, "/home/user/inbox", parsed["root"])
	assert.Equal(t, "run-x", parsed["journal_id"])

	report := parsed["report"].(map[string]interface{})
	assert.Equal(t, float64(3), report["moved"])
	assert.Equal(t, float64(1), report["skipped"])
	assert.Equal(t, float64(42), report["total_bytes"])

	// Unpopulated sections are omitted.
	assert.NotContains(t, parsed, "analysis")
	assert.NotContains(t, parsed, "logs")
	assert.NotContains(t, parsed, "validity")
}

func TestJSONFormatter_Analysis(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode:     "analyze",
		Root:     "/tmp/x",
		Analysis: &types.Analysis{Root: "/tmp/x", Files: 10, Dirs: 2, TotalBytes: 100},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	analysis := parsed["analysis"].(map[string]interface{})
	assert.Equal(t, float64(10), analysis["files"])
	assert.NotContains(t, parsed, "report")
}

func TestJSONFormatter_Indented(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{Mode: "logs"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  ")
}

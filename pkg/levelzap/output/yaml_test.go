package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dterracino/levelzap/pkg/levelzap/types"
)

func TestYAMLFormatter_Report(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	result := &Result{
		Mode:      "flatten",
		Root:      "/home/user/inbox",
		JournalID: "run-x",
		Report:    &types.Report{Moved: 3, TotalBytes: 42},
	}

	err := formatter.Format(&buf, result)
	require.NoError(t, err)

	// Output is valid YAML round-trippable into a map.
	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "flatten", parsed["mode"])
	assert.Equal(t, "/home/user/inbox", parsed["root"])
	assert.Equal(t, "run-x", parsed["journal_id"])
	assert.Contains(t, parsed, "report")
	assert.NotContains(t, parsed, "analysis")
}

func TestYAMLFormatter_Empty(t *testing.T) {
	formatter := &YAMLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{Mode: "logs", Root: "/tmp/x"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "mode: logs")
	assert.Contains(t, out, "root: /tmp/x")
}

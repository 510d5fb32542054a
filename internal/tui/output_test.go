package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

func TestNewOutput(t *testing.T) {
	var buf bytes.Buffer
	assert.IsType(t, &JSONOutput{}, NewOutput(&buf, FormatJSON))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, FormatText))
	assert.IsType(t, &TTYOutput{}, NewOutput(&buf, ""))
}

func TestTTYOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Success("done")
	out.Warning("local model unavailable")
	out.Info("planning")
	out.Error(errors.Wrap(errors.ErrEmptyBrief, "generate"))

	got := buf.String()
	assert.Contains(t, got, "✓ done")
	assert.Contains(t, got, "⚠ local model unavailable")
	assert.Contains(t, got, "ℹ planning")
	assert.Contains(t, got, "✗ Please describe the project you want to generate.")
	assert.Contains(t, got, "▸ Try: Pass a brief as an argument")
}

func TestTTYOutput_Table(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewTTYOutput(&buf).Table([]string{"AGENT", "STATUS"}, [][]string{
		{"supervisor", "success"},
		{"developer", "failed"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "AGENT       STATUS", lines[0])
	assert.Equal(t, "supervisor  success", lines[1])
	assert.Equal(t, "developer   failed", lines[2])
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewJSONOutput(&buf)

	out.Success("done")
	out.Error(errors.Wrap(errors.ErrRunNotFound, "lookup"))
	out.Table([]string{"path", "size"}, [][]string{{"main.py", "12"}, {"README.md"}})
	out.URL("https://example.com/a.zip", "")

	dec := json.NewDecoder(&buf)

	var msg map[string]string
	require.NoError(t, dec.Decode(&msg))
	assert.Equal(t, map[string]string{"type": "success", "message": "done"}, msg)

	var errMsg map[string]string
	require.NoError(t, dec.Decode(&errMsg))
	assert.Equal(t, "error", errMsg["type"])
	assert.Equal(t, "That run does not exist or has expired.", errMsg["message"])
	assert.Equal(t, "lookup: run not found", errMsg["details"])
	assert.Equal(t, "Start a new generation.", errMsg["action"])

	var rows []map[string]string
	require.NoError(t, dec.Decode(&rows))
	assert.Equal(t, []map[string]string{
		{"path": "main.py", "size": "12"},
		{"path": "README.md", "size": ""},
	}, rows)

	var url map[string]string
	require.NoError(t, dec.Decode(&url))
	assert.Equal(t, "https://example.com/a.zip", url["url"])
	assert.NotContains(t, url, "display")
}

func TestTableAlignmentAndTruncation(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()
	var buf bytes.Buffer
	tbl := NewTable(&buf, []TableColumn{
		{Name: "FILE", MaxWidth: 8},
		{Name: "BYTES", Align: AlignRight},
	})
	tbl.AddRow("very_long_name.py", "1200")
	tbl.AddRow("日本.py", "7")
	tbl.Render()

	assert.Equal(t, []int{8, 5}, tbl.Widths())
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "very_... 1200", strings.Join(strings.Fields(lines[1]), " "))
	assert.True(t, strings.HasSuffix(lines[2], "    7"))
}

func TestStyles(t *testing.T) {
	assert.Equal(t, "✓", RunStatusIcon(domain.RunSuccess))
	assert.Equal(t, "✗", RunStatusIcon(domain.RunError))
	assert.Equal(t, "✓", CheckStatusIcon(domain.AgentCheckSuccess))
	assert.Equal(t, "✗", CheckStatusIcon(domain.AgentCheckFailed))

	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport())
}

func TestBoxStyle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()
	box := NewBoxStyle().WithWidth(40).Render("Result", "status: success")
	assert.Contains(t, box, "Result")
	assert.Contains(t, box, "status: success")
	assert.Contains(t, box, "╭")
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "250ms", FormatSeconds(0.25))
	assert.Equal(t, "12.4s", FormatSeconds(12.4))
	assert.Equal(t, "2m05s", FormatSeconds(125))
}

func TestFormatHyperlink(t *testing.T) {
	assert.Equal(t, "\x1b]8;;http://x\x1b\\x\x1b]8;;\x1b\\", FormatHyperlink("http://x", "x"))
}

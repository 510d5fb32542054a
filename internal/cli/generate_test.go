package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/archive"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/llm/llmtest"
	"github.com/lunacore/luna/internal/testutil"
)

func TestGenerate_Text(t *testing.T) {
	cloud, local := testutil.CalculatorBackends(t)
	useBackends(t, cloud, local)

	out, err := runCLI(t, "generate", "-t", "cli", testutil.CalculatorBrief)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Generated create_simple in")
	assert.Contains(t, out, "Run ID:     run-1")
	assert.Contains(t, out, "Routing:    low")
	assert.Contains(t, out, "planning")
	assert.Contains(t, out, "calc.py")
	assert.Contains(t, out, "tests/test_calc.py")
	assert.Contains(t, out, "unzip create_simple.zip")
	assert.Contains(t, out, "python main.py --help")
}

func TestGenerate_NameZipAndShowFiles(t *testing.T) {
	cloud, local := testutil.CalculatorBackends(t)
	useBackends(t, cloud, local)
	zipDir := t.TempDir()

	out, err := runCLI(t, "generate", "--name", "calculator", "--zip", zipDir, "--show-files", testutil.CalculatorBrief)
	require.NoError(t, err)

	zipPath := filepath.Join(zipDir, archive.FileName("calculator"))
	assert.FileExists(t, zipPath)
	assert.Contains(t, out, "Archive written to "+zipPath)
	assert.Contains(t, out, "def subtract(a, b):")
}

func TestGenerate_JSON(t *testing.T) {
	cloud, local := testutil.CalculatorBackends(t)
	dir := useBackends(t, cloud, local)

	out, err := runCLI(t, "-o", "json", "generate", testutil.CalculatorBrief)
	require.NoError(t, err)

	report := decodeJSON[map[string]any](t, out)
	assert.Equal(t, "success", report["status"])
	assert.Equal(t, "run-1", report["run_id"])
	assert.Equal(t, "create_simple", report["project_name"])
	assert.NotContains(t, report, "files")
	assert.Len(t, report["file_paths"], 4)
	assert.Len(t, report["agents"], 3)

	outputDir, ok := report["output_directory"].(string)
	require.True(t, ok)
	assert.Equal(t, dir, filepath.Dir(outputDir))
	assert.FileExists(t, filepath.Join(outputDir, "calc.py"))
}

func TestGenerate_EmptyBrief(t *testing.T) {
	cloud, local := testutil.CalculatorBackends(t)
	dir := useBackends(t, cloud, local)

	_, err := runCLI(t, "generate")
	require.ErrorIs(t, err, errors.ErrEmptyBrief)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.Zero(t, cloud.CallCount())
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	cloud, local := testutil.CalculatorBackends(t)
	useBackends(t, cloud, local)

	_, err := runCLI(t, "generate", "-t", "rust", testutil.CalculatorBrief)
	require.ErrorIs(t, err, errors.ErrUnknownTemplate)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestGenerate_BackendFailure(t *testing.T) {
	cloud := llmtest.New().Push(llmtest.Reply{Err: testutil.ErrMockQuota})
	local := llmtest.NewLocal()
	useBackends(t, cloud, local)

	out, err := runCLI(t, "generate", testutil.CalculatorBrief)
	require.ErrorIs(t, err, testutil.ErrMockQuota)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.Contains(t, out, "⚠ Run run-1 failed")
	assert.Contains(t, out, "✗ error")
	assert.NotContains(t, out, "unzip")
}

func TestStartedStage(t *testing.T) {
	stage, ok := startedStage("implementing stage started (developer on local)")
	assert.True(t, ok)
	assert.Equal(t, domain.StageImplementing, stage)

	_, ok = startedStage("planning stage completed: 1 files, 1 tool calls")
	assert.False(t, ok)
}

func TestWriteZip_File(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.zip")
	path, err := writeZip(target, &domain.Result{ProjectName: "p", Files: map[string]string{"a.py": "x = 1\n"}})
	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.FileExists(t, target)
}

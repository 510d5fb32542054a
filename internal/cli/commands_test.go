package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/llm/llmtest"
	"github.com/lunacore/luna/internal/testutil"
)

func TestCheck_AllAgentsAnswer(t *testing.T) {
	useBackends(t, llmtest.New("pong"), llmtest.NewLocal("pong", "pong"))

	out, err := runCLI(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Cloud:  fake-model")
	assert.Contains(t, out, "Local:  fake-local-model")
	assert.Contains(t, out, "supervisor")
	assert.Contains(t, out, "✓ success")
	assert.Contains(t, out, "✓ 3 agents answered")
}

func TestCheck_Partial(t *testing.T) {
	useBackends(t, llmtest.New("pong"), llmtest.NewLocal())

	out, err := runCLI(t, "-o", "json", "check")
	require.ErrorIs(t, err, errors.ErrBackendUnavailable)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	report := decodeJSON[domain.HealthReport](t, out)
	assert.Equal(t, domain.HealthPartial, report.Status)
	assert.Equal(t, domain.AgentCheckSuccess, report.AgentTests[domain.RoleSupervisor].Status)
	assert.Equal(t, domain.AgentCheckFailed, report.AgentTests[domain.RoleDeveloper].Status)
	assert.NotEmpty(t, report.AgentTests[domain.RoleDeveloper].Error)
}

func TestRoute_Text(t *testing.T) {
	out, err := runCLI(t, "route", "Create", "a", "simple", "calculator")
	require.NoError(t, err)
	assert.Contains(t, out, "Complexity:  low")
	assert.Contains(t, out, "developer   local")
}

func TestRoute_JSON(t *testing.T) {
	out, err := runCLI(t, "-o", "json", "route", "Create a simple calculator")
	require.NoError(t, err)

	d := decodeJSON[domain.RoutingDecision](t, out)
	assert.Equal(t, domain.ComplexityLow, d.Complexity)
	assert.Equal(t, domain.BackendCloud, d.BackendFor(domain.RoleSupervisor))
	assert.Equal(t, domain.BackendLocal, d.BackendFor(domain.RoleTester))
}

func TestRoute_ProbeUsesBackends(t *testing.T) {
	useBackends(t, llmtest.New(), nil)

	out, err := runCLI(t, "-o", "json", "route", "--probe", "Create a simple calculator")
	require.NoError(t, err)

	d := decodeJSON[domain.RoutingDecision](t, out)
	assert.False(t, d.LocalAvailable)
	for _, role := range domain.Roles() {
		assert.Equal(t, domain.BackendCloud, d.BackendFor(role), role)
	}
}

func TestRoute_RequiresBrief(t *testing.T) {
	_, err := runCLI(t, "route")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestToolsList(t *testing.T) {
	out, err := runCLI(t, "tools", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "write_file")
	assert.Contains(t, out, "validate_python_syntax")
	assert.Contains(t, out, "ask_supervisor")
	assert.Contains(t, out, "supervisor, developer, tester")
}

func TestToolsValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.py")
	bad := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(good, []byte("def add(a, b):\n    return a + b\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("x = 1\ndef broken(:\n    pass\n"), 0o600))

	out, err := runCLI(t, "tools", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ ok")

	out, err = runCLI(t, "-o", "json", "tools", "validate", good, bad)
	require.ErrorIs(t, err, errors.ErrSyntaxInvalid)

	results := decodeJSON[[]validation](t, out)
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.Equal(t, 2, results[1].Line)
}

func TestToolsValidate_RunDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.py"), []byte(testutil.CalculatorCode), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "test_calc.py"), []byte("def test_x(:\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# calc\n"), 0o600))

	out, err := runCLI(t, "-o", "json", "tools", "validate", dir)
	require.ErrorIs(t, err, errors.ErrSyntaxInvalid)

	results := decodeJSON[[]validation](t, out)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "calc.py"), results[0].File)
	assert.True(t, results[0].Valid)
	assert.Equal(t, filepath.Join(dir, "tests", "test_calc.py"), results[1].File)
	assert.False(t, results[1].Valid)
}

func TestToolsValidate_MissingFile(t *testing.T) {
	_, err := runCLI(t, "tools", "validate", filepath.Join(t.TempDir(), "nope.py"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigShow_Text(t *testing.T) {
	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "provider: openai")
	assert.Contains(t, out, "api_key_env: OPENAI_API_KEY")
	assert.Contains(t, out, "global")
	assert.Contains(t, out, "cloud api key")
}

func TestConfigShow_JSONHidesSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-live-secret-value")

	out, err := runCLI(t, "-o", "json", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-live-secret-value")

	view := decodeJSON[map[string]any](t, out)
	cfg, ok := view["config"].(map[string]any)
	require.True(t, ok)
	cloud, ok := cfg["cloud"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "openai", cloud["provider"])

	creds, ok := view["credentials"].([]any)
	require.True(t, ok)
	first, ok := creds[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "OPENAI_API_KEY", first["env"])
	assert.Equal(t, true, first["set"])
}

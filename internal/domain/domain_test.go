package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/errors"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in      string
		want    Template
		wantErr bool
	}{
		{"fastapi", TemplateFastAPI, false},
		{" Streamlit ", TemplateStreamlit, false},
		{"flask", TemplateFlask, false},
		{"cli", TemplateCLI, false},
		{"library", TemplateLibrary, false},
		{"python", TemplateCLI, false},
		{"", TemplateCLI, false},
		{"django", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTemplate(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, errors.ErrUnknownTemplate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTemplate_DisplayName(t *testing.T) {
	assert.Equal(t, "FastAPI", TemplateFastAPI.DisplayName())
	assert.Equal(t, "Streamlit", TemplateStreamlit.DisplayName())
	assert.Equal(t, "CLI", TemplateCLI.DisplayName())
	assert.Equal(t, "Library", TemplateLibrary.DisplayName())
}

func TestTemplates_AllHaveDescriptions(t *testing.T) {
	seen := map[string]bool{}
	for _, tpl := range Templates() {
		d := tpl.Description()
		assert.NotEmpty(t, d)
		assert.False(t, seen[d], "description for %s duplicates another", tpl)
		seen[d] = true
	}
}

func TestRoutingDecision_BackendFor(t *testing.T) {
	d := RoutingDecision{Assignments: map[Role]BackendKind{RoleDeveloper: BackendLocal}}

	assert.Equal(t, BackendLocal, d.BackendFor(RoleDeveloper))
	assert.Equal(t, BackendCloud, d.BackendFor(RoleTester), "missing role defaults to cloud")
}

func TestDefaultAssignments(t *testing.T) {
	a := DefaultAssignments()
	assert.Equal(t, BackendCloud, a[RoleSupervisor])
	assert.Equal(t, BackendLocal, a[RoleDeveloper])
	assert.Equal(t, BackendLocal, a[RoleTester])
}

func TestSeconds(t *testing.T) {
	assert.InDelta(t, 1.23, Seconds(1234*time.Millisecond), 1e-9)
	assert.InDelta(t, 0.01, Seconds(5*time.Millisecond), 1e-9)
	assert.InDelta(t, 0.0, Seconds(0), 1e-9)
}

func TestResult_JSONKeys(t *testing.T) {
	r := Result{
		Status:          RunSuccess,
		ExecutionTime:   1.5,
		Files:           map[string]string{"main.py": "print(1)"},
		AgentsCount:     3,
		TasksCount:      3,
		Output:          "done",
		OutputDirectory: "output/calc_20240101_000000",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"status", "execution_time", "files", "agents_count", "tasks_count", "result", "output_directory"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "error")
	assert.True(t, r.Succeeded())
}

func TestHealthReport_OK(t *testing.T) {
	assert.True(t, HealthReport{Status: HealthOK}.OK())
	assert.False(t, HealthReport{Status: HealthPartial}.OK())
}

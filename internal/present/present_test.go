package present

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lunacore/luna/internal/domain"
)

func TestPreviewLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.py", LangPython},
		{"pkg/Module.PY", LangPython},
		{"README.md", LangMarkdown},
		{"plan.json", LangJSON},
		{"config.yaml", LangYAML},
		{"ci\\deploy.yml", LangYAML},
		{"requirements.txt", LangText},
		{"Dockerfile", LangText},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, PreviewLanguage(tc.path))
		})
	}

	assert.True(t, LangJSON.Structured())
	assert.True(t, LangYAML.Structured())
	assert.False(t, LangPython.Structured())
}

func TestPreviews(t *testing.T) {
	files := map[string]string{"a.py": "a", "b.md": "b", "c.json": "{}"}
	paths := []string{"a.py", "b.md", "c.json"}

	got := Previews(files, paths, 2)
	assert.Equal(t, []Preview{
		{Path: "a.py", Language: LangPython, Content: "a"},
		{Path: "b.md", Language: LangMarkdown, Content: "b"},
	}, got)

	assert.Len(t, Previews(files, paths, 0), 3)
	assert.Len(t, Previews(files, paths, PreviewLimit), 3)
}

func TestPreviews_IndentsJSON(t *testing.T) {
	files := map[string]string{"plan.json": `{"a":1}`, "bad.json": "{", "conf.yaml": "a: 1\n"}
	got := Previews(files, []string{"bad.json", "conf.yaml", "plan.json"}, 0)

	assert.Equal(t, "{", got[0].Content)
	assert.True(t, got[0].Structured)
	assert.Equal(t, "a: 1\n", got[1].Content)
	assert.True(t, got[1].Structured)
	assert.Equal(t, "{\n  \"a\": 1\n}", got[2].Content)
}

func TestDeployInstructions(t *testing.T) {
	tests := []struct {
		template domain.Template
		run      string
	}{
		{domain.TemplateFastAPI, "uvicorn main:app --reload"},
		{domain.TemplateStreamlit, "streamlit run app.py"},
		{domain.TemplateFlask, "flask --app app run"},
		{domain.TemplateCLI, "python main.py --help"},
		{domain.TemplateLibrary, `python -c "import calc_tool"`},
	}
	for _, tc := range tests {
		t.Run(tc.template.String(), func(t *testing.T) {
			md := DeployInstructions(tc.template, "calc_tool")
			assert.Contains(t, md, "unzip calc_tool.zip")
			assert.Contains(t, md, "cd calc_tool")
			assert.Contains(t, md, "pip install -r requirements.txt")
			assert.Contains(t, md, tc.run)
			assert.Contains(t, md, tc.template.DisplayName())
		})
	}

	assert.Contains(t, DeployInstructions(domain.TemplateCLI, ""), "unzip project.zip")
}

func TestPresets(t *testing.T) {
	presets := Presets()
	assert.NotEmpty(t, presets)
	for _, p := range presets {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Brief)
		_, err := domain.ParseTemplate(p.Template.String())
		assert.NoError(t, err)
	}
}

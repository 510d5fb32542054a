// Package present turns a generation result into what a user sees: preview
// languages for file tabs, deployment instructions and the quick-start briefs.
package present

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"
	"text/template"

	"github.com/lunacore/luna/internal/domain"
)

// Language is a syntax-highlighting hint for a file preview.
type Language string

// Preview languages.
const (
	LangPython   Language = "python"
	LangMarkdown Language = "markdown"
	LangJSON     Language = "json"
	LangYAML     Language = "yaml"
	LangText     Language = "text"
)

// PreviewLimit is how many files get a preview tab.
const PreviewLimit = 5

// PreviewLanguage picks the highlighting language for path by extension.
func PreviewLanguage(p string) Language {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(p, "\\", "/"))) {
	case ".py":
		return LangPython
	case ".md":
		return LangMarkdown
	case ".json":
		return LangJSON
	case ".yaml", ".yml":
		return LangYAML
	default:
		return LangText
	}
}

// Structured reports whether l is a data format rather than code or prose.
func (l Language) Structured() bool {
	return l == LangJSON || l == LangYAML
}

// Preview is one file tab.
type Preview struct {
	Path       string   `json:"path"`
	Language   Language `json:"language"`
	Structured bool     `json:"structured"`
	Content    string   `json:"content"`
}

// Previews returns up to limit file tabs in path order. A non-positive limit
// returns every file.
func Previews(files map[string]string, paths []string, limit int) []Preview {
	if limit <= 0 || limit > len(paths) {
		limit = len(paths)
	}
	out := make([]Preview, 0, limit)
	for _, p := range paths[:limit] {
		lang := PreviewLanguage(p)
		pv := Preview{Path: p, Language: lang, Structured: lang.Structured(), Content: files[p]}
		if lang == LangJSON {
			var buf bytes.Buffer
			if json.Indent(&buf, []byte(pv.Content), "", "  ") == nil {
				pv.Content = buf.String()
			}
		}
		out = append(out, pv)
	}
	return out
}

type deployData struct {
	Project  string
	Template string
	Run      []string
}

//nolint:gochecknoglobals // Parsed once
var deployTmpl = template.Must(template.New("deploy").Parse(`## Deploying {{.Project}} ({{.Template}})

**1. Extract the project**

` + "```bash" + `
unzip {{.Project}}.zip
cd {{.Project}}
` + "```" + `

**2. Install the dependencies**

` + "```bash" + `
python -m venv .venv
source .venv/bin/activate      # Windows: .venv\Scripts\Activate
pip install -r requirements.txt
` + "```" + `

**3. Run it**

` + "```bash" + `
{{range .Run}}{{.}}
{{end}}` + "```" + `

**4. Run the tests**

` + "```bash" + `
pytest
` + "```" + `
`))

func runCommands(t domain.Template, project string) []string {
	switch t {
	case domain.TemplateFastAPI:
		return []string{"uvicorn main:app --reload"}
	case domain.TemplateStreamlit:
		return []string{"streamlit run app.py"}
	case domain.TemplateFlask:
		return []string{"flask --app app run --debug"}
	case domain.TemplateLibrary:
		return []string{"pip install -e .", "python -c \"import " + project + "\""}
	default:
		return []string{"python main.py --help"}
	}
}

// DeployInstructions renders markdown instructions for running a generated
// project of template t.
func DeployInstructions(t domain.Template, projectName string) string {
	if projectName == "" {
		projectName = "project"
	}
	var buf bytes.Buffer
	// The template is static and the data is plain strings.
	_ = deployTmpl.Execute(&buf, deployData{
		Project:  projectName,
		Template: t.DisplayName(),
		Run:      runCommands(t, projectName),
	})
	return buf.String()
}

// Preset is a quick-start brief.
type Preset struct {
	Name     string          `json:"name"`
	Template domain.Template `json:"template"`
	Brief    string          `json:"brief"`
}

// Presets returns the quick-start briefs offered by the dashboard and the
// interactive prompt.
func Presets() []Preset {
	return []Preset{
		{
			Name:     "REST API with FastAPI",
			Template: domain.TemplateFastAPI,
			Brief:    "Create a REST API with FastAPI, JWT authentication and CRUD endpoints for users and blog posts, with Pydantic validation and automatic documentation",
		},
		{
			Name:     "Streamlit dashboard",
			Template: domain.TemplateStreamlit,
			Brief:    "Create a Streamlit dashboard to visualise sales data with interactive charts, date and region filters, and CSV export",
		},
		{
			Name:     "Python CLI",
			Template: domain.TemplateCLI,
			Brief:    "Create a Python CLI tool to manage files with commands to list, copy and delete, using argparse and error handling",
		},
		{
			Name:     "Discord bot",
			Template: domain.TemplateCLI,
			Brief:    "Create a Discord bot with moderation, music and game commands using discord.py with event handling",
		},
		{
			Name:     "Web scraper",
			Template: domain.TemplateCLI,
			Brief:    "Create a web scraper with BeautifulSoup that extracts product data from e-commerce sites, with proxy handling and CSV/JSON export",
		},
	}
}

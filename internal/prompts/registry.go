package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
)

//go:embed templates/common/*.tmpl templates/agent/*.tmpl templates/pipeline/*.tmpl templates/tools/*.tmpl
var templateFS embed.FS

// registry maps prompt IDs to parsed templates. It is built once at init and
// only read afterwards.
type registry map[PromptID]*template.Template

// promptIDs lists every ID the package renders; each must have a template.
//
//nolint:gochecknoglobals // fixed list
var promptIDs = []PromptID{
	AgentSystem, AgentTask, AgentToolResults,
	StagePlanning, StageImplementing, StageTesting,
	SupervisorAdvice,
}

//nolint:gochecknoglobals // embedded templates are parsed once
var globalRegistry = mustLoad()

var funcs = template.FuncMap{ //nolint:gochecknoglobals // read-only
	"join":       strings.Join,
	"trim":       strings.TrimSpace,
	"hasContent": func(s string) bool { return strings.TrimSpace(s) != "" },
	"inc":        func(i int) int { return i + 1 },
}

func mustLoad() registry {
	r, err := load(templateFS)
	if err == nil {
		for _, id := range promptIDs {
			if _, ok := r[id]; !ok {
				err = fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
				break
			}
		}
	}
	if err != nil {
		panic(fmt.Sprintf("load embedded prompts: %v", err))
	}
	return r
}

// load parses every templates/<group>/<name>.tmpl as prompt "<group>/<name>".
// Files under templates/common are partials available to every prompt as
// "common/<name>".
func load(fsys fs.FS) (registry, error) {
	partials := make(map[string]string)
	commons, err := fs.Glob(fsys, "templates/common/*.tmpl")
	if err != nil {
		return nil, err
	}
	for _, c := range commons {
		src, err := fs.ReadFile(fsys, c)
		if err != nil {
			return nil, err
		}
		partials["common/"+strings.TrimSuffix(path.Base(c), ".tmpl")] = string(src)
	}

	r := make(registry)
	err = fs.WalkDir(fsys, "templates", func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir(), path.Ext(p) != ".tmpl", strings.HasPrefix(p, "templates/common/"):
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		id := PromptID(strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".tmpl"))

		tmpl := template.New(string(id)).Funcs(funcs)
		for name, body := range partials {
			if _, err := tmpl.New(name).Parse(body); err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}
		}
		if _, err := tmpl.Parse(string(src)); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r[id] = tmpl
		return nil
	})
	return r, err
}

func (r registry) get(id PromptID) (*template.Template, error) {
	tmpl, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}

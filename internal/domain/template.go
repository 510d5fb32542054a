// Package domain provides shared domain types for luna's generation pipeline.
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lunacore/luna/internal/errors"
)

// Template is the kind of project the agents are asked to produce. It only
// reaches the agents as prompt text and selects deployment instructions.
type Template string

// Supported templates.
const (
	TemplateFastAPI   Template = "fastapi"
	TemplateStreamlit Template = "streamlit"
	TemplateFlask     Template = "flask"
	TemplateCLI       Template = "cli"
	TemplateLibrary   Template = "library"
)

// templateAliases maps accepted synonyms onto canonical templates.
//
//nolint:gochecknoglobals // Static lookup table
var templateAliases = map[string]Template{
	"python":  TemplateCLI,
	"script":  TemplateCLI,
	"lib":     TemplateLibrary,
	"package": TemplateLibrary,
}

// Templates returns every supported template in display order.
func Templates() []Template {
	return []Template{TemplateFastAPI, TemplateStreamlit, TemplateFlask, TemplateCLI, TemplateLibrary}
}

// ParseTemplate resolves a user supplied template tag. Empty input selects
// the cli template.
func ParseTemplate(s string) (Template, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if tag == "" {
		return TemplateCLI, nil
	}
	for _, t := range Templates() {
		if string(t) == tag {
			return t, nil
		}
	}
	if t, ok := templateAliases[tag]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", errors.ErrUnknownTemplate, s)
}

// String implements fmt.Stringer.
func (t Template) String() string {
	return string(t)
}

// DisplayName returns a human-friendly name such as "FastAPI" or "Library".
func (t Template) DisplayName() string {
	switch t {
	case TemplateFastAPI:
		return "FastAPI"
	case TemplateCLI:
		return "CLI"
	default:
		return cases.Title(language.English).String(string(t))
	}
}

// Description is the prompt-facing summary of what the template implies.
func (t Template) Description() string {
	switch t {
	case TemplateFastAPI:
		return "a FastAPI REST API served with uvicorn"
	case TemplateStreamlit:
		return "a Streamlit web application"
	case TemplateFlask:
		return "a Flask web application"
	case TemplateLibrary:
		return "an installable Python library with a pyproject.toml"
	default:
		return "a Python command-line application"
	}
}

package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lunacore/luna/internal/errors"
)

// Module is one file or package the plan calls for.
type Module struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose"`
}

// Plan is the planning stage's artifact.
type Plan struct {
	ProjectName  string            `json:"project_name"`
	Template     string            `json:"template"`
	Modules      []Module          `json:"modules"`
	Interfaces   []json.RawMessage `json:"interfaces,omitempty"`
	TestPlan     []json.RawMessage `json:"test_plan"`
	Dependencies []string          `json:"dependencies,omitempty"`
}

// PlanSchema is the JSON schema plan.json must satisfy.
const PlanSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["project_name", "template", "modules", "test_plan"],
  "properties": {
    "project_name": {"type": "string", "minLength": 1},
    "template": {"type": "string"},
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["path", "purpose"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "purpose": {"type": "string"}
        }
      }
    },
    "interfaces": {"type": "array"},
    "test_plan": {"type": "array"},
    "dependencies": {"type": "array", "items": {"type": "string"}}
  }
}`

//nolint:gochecknoglobals // Compiled once
var (
	planSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(PlanSchema))
	})
	jsonFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\n(\\{.*?\\})\\s*```")
)

// ValidatePlan checks data against PlanSchema and decodes it.
func ValidatePlan(data []byte) (*Plan, error) {
	schema, err := planSchema()
	if err != nil {
		return nil, errors.Wrap(err, "compile plan schema")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: plan is not valid JSON: %w", errors.ErrContractViolation, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: plan does not match schema: %s", errors.ErrContractViolation, strings.Join(msgs, "; "))
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: decode plan: %w", errors.ErrContractViolation, err)
	}
	return &plan, nil
}

// ExtractPlan looks for a JSON object in an agent's answer: the whole text,
// then a fenced code block, then the outermost braces.
func ExtractPlan(text string) ([]byte, bool) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return []byte(text), true
	}
	if m := jsonFenceRegex.FindStringSubmatch(text); m != nil && json.Valid([]byte(m[1])) {
		return []byte(m[1]), true
	}
	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		candidate := []byte(text[start : end+1])
		if json.Valid(candidate) {
			return candidate, true
		}
	}
	return nil, false
}

// FormatPlan pretty-prints plan JSON for writing to disk.
func FormatPlan(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return data
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// ModulePaths returns the module paths listed in the plan.
func (p *Plan) ModulePaths() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Modules))
	for _, m := range p.Modules {
		out = append(out, m.Path)
	}
	return out
}

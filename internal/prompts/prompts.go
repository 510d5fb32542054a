// Package prompts holds the text the agents are given: personas, the tool
// protocol, and the per-stage task descriptions. Prompts are text/template
// files embedded at compile time.
package prompts

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound indicates the requested prompt doesn't exist.
	ErrTemplateNotFound = errors.New("prompt template not found")

	// ErrTemplateExecution indicates a failure during template execution.
	ErrTemplateExecution = errors.New("prompt template execution failed")

	// ErrInvalidData indicates the provided data doesn't match the prompt.
	ErrInvalidData = errors.New("invalid data for prompt")
)

// Render executes a prompt template with the provided data.
//
//	prompt, err := prompts.Render(prompts.StagePlanning, prompts.PlanningData{
//	    Brief:    brief,
//	    Template: "fastapi",
//	    PlanFile: "plan.json",
//	})
func Render(id PromptID, data any) (string, error) {
	if err := ValidateData(id, data); err != nil {
		return "", err
	}
	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}
	return buf.String(), nil
}

// MustRender executes a prompt template and panics on error.
// Use it only with data whose type is fixed at the call site.
func MustRender(id PromptID, data any) string {
	out, err := Render(id, data)
	if err != nil {
		panic(fmt.Sprintf("prompts.MustRender(%s): %v", id, err))
	}
	return out
}

// ValidateData checks that data has the type the prompt expects.
func ValidateData(id PromptID, data any) error {
	var ok bool
	switch id {
	case AgentSystem:
		_, ok = data.(AgentSystemData)
	case AgentTask:
		_, ok = data.(AgentTaskData)
	case AgentToolResults:
		_, ok = data.(ToolResultData)
	case StagePlanning:
		_, ok = data.(PlanningData)
	case StageImplementing:
		_, ok = data.(ImplementingData)
	case StageTesting:
		_, ok = data.(TestingData)
	case SupervisorAdvice:
		_, ok = data.(SupervisorAdviceData)
	default:
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if !ok {
		return fmt.Errorf("%w: %s got %T", ErrInvalidData, id, data)
	}
	return nil
}

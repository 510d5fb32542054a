package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/prompts"
)

// Completer is the part of a model backend the supervisor tool needs.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

const supervisorSystemPrompt = "You are the architect supervising a development team."

// AskSupervisor forwards a developer's problem to the supervisor's backend.
type AskSupervisor struct {
	backend Completer
}

// NewAskSupervisor returns an ask_supervisor tool that consults backend.
func NewAskSupervisor(backend Completer) *AskSupervisor {
	return &AskSupervisor{backend: backend}
}

type askInput struct {
	Problem string `json:"problem"`
	Context string `json:"context"`
}

// Spec implements Tool.
func (a *AskSupervisor) Spec() Spec {
	return Spec{
		Name:        NameAskSupervisor,
		Description: "Ask the supervisor for guidance when blocked. Returns advice, not code.",
		Parameters: []Param{
			{Name: "problem", Description: "what is blocking you"},
			{Name: "context", Description: "relevant details: files, errors, decisions so far"},
		},
	}
}

// Call implements Tool.
func (a *AskSupervisor) Call(ctx context.Context, input json.RawMessage) Result {
	var in askInput
	if err := decodeInput(input, &in); err != nil {
		return failResult("Error contacting supervisor: invalid input: %v", err)
	}
	if strings.TrimSpace(in.Problem) == "" {
		return failResult("Error contacting supervisor: problem is empty")
	}

	prompt, err := prompts.Render(prompts.SupervisorAdvice, prompts.SupervisorAdviceData{
		Problem: in.Problem,
		Context: in.Context,
	})
	if err != nil {
		return failResult("Error contacting supervisor: %v", err)
	}
	reply, err := a.backend.Complete(ctx, []domain.Message{
		domain.SystemMessage(supervisorSystemPrompt),
		domain.UserMessage(prompt),
	})
	if err != nil {
		return failResult("Error contacting supervisor: %v", err)
	}
	return okResult("Supervisor advice: %s", strings.TrimSpace(reply))
}

var _ Tool = (*AskSupervisor)(nil)

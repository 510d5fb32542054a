package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/llm"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/prompts"
	"github.com/lunacore/luna/internal/tools"
)

// ToolSet is the set of tools an agent may call during a run.
type ToolSet interface {
	Specs() []tools.Spec
	Call(ctx context.Context, name string, input json.RawMessage) tools.Result
}

// Task is one unit of work handed to an agent.
type Task struct {
	Description    string
	ExpectedOutput string
	// Context holds the outputs of earlier tasks, oldest first.
	Context []string
}

// Output is what an agent produced for a task.
type Output struct {
	Text       string
	Iterations int
	ToolCalls  int
	// Capped is true when the iteration cap ended the loop.
	Capped bool
}

// Agent binds a definition to a backend and tools for one run.
type Agent struct {
	def     Definition
	backend llm.Backend
	tools   ToolSet
	logger  zerolog.Logger
}

// New creates a run-scoped agent. tools may be nil for an agent without tools.
func New(def Definition, backend llm.Backend, toolSet ToolSet, logger zerolog.Logger) *Agent {
	return &Agent{
		def:     def,
		backend: backend,
		tools:   toolSet,
		logger:  logging.WithCategory(logger, logging.CategoryAgent).With().Str("role", def.Role.String()).Logger(),
	}
}

// Definition returns the agent's identity.
func (a *Agent) Definition() Definition {
	return a.def
}

// Backend returns the backend the agent is bound to.
func (a *Agent) Backend() llm.Backend {
	return a.backend
}

// SystemPrompt renders the persona and tool protocol.
func (a *Agent) SystemPrompt() (string, error) {
	data := prompts.AgentSystemData{
		Title:     a.def.Title,
		Goal:      a.def.Goal,
		Backstory: a.def.Backstory,
	}
	if a.tools != nil {
		for _, s := range a.tools.Specs() {
			info := prompts.ToolInfo{Name: s.Name, Description: s.Description}
			for _, p := range s.Parameters {
				info.Params = append(info.Params, prompts.ParamInfo{Name: p.Name, Description: p.Description})
			}
			data.Tools = append(data.Tools, info)
		}
	}
	return prompts.Render(prompts.AgentSystem, data)
}

// Execute runs the tool loop until the model gives a final answer or the
// iteration cap is reached. At the cap the last reply becomes the output.
// Backend errors end the loop and are returned.
func (a *Agent) Execute(ctx context.Context, task Task) (Output, error) {
	system, err := a.SystemPrompt()
	if err != nil {
		return Output{}, err
	}
	taskPrompt, err := prompts.Render(prompts.AgentTask, prompts.AgentTaskData{
		Description:    task.Description,
		ExpectedOutput: task.ExpectedOutput,
		Context:        task.Context,
	})
	if err != nil {
		return Output{}, err
	}

	maxIter := a.def.MaxIterations
	if maxIter <= 0 {
		maxIter = 1
	}

	messages := []domain.Message{domain.SystemMessage(system), domain.UserMessage(taskPrompt)}
	var out Output
	var last string

	a.logger.Info().Str("backend", a.backend.Name()).Msgf("%s started", a.def.Title)

	for i := 1; i <= maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		reply, err := a.backend.Complete(ctx, messages)
		if err != nil {
			return out, errors.Wrapf(err, "%s turn %d", a.def.Role, i)
		}
		out.Iterations = i
		last = reply

		action := ParseAction(reply)
		if action.Kind == ActionFinal {
			out.Text = action.Final
			a.logger.Debug().Int("iterations", i).Msg("final answer received")
			return out, nil
		}

		messages = append(messages, domain.AssistantMessage(reply))
		results := a.runTools(ctx, action)
		out.ToolCalls += len(action.Calls)

		feedback, err := prompts.Render(prompts.AgentToolResults, prompts.ToolResultData{
			Results:   results,
			Remaining: maxIter - i,
		})
		if err != nil {
			return out, err
		}
		messages = append(messages, domain.UserMessage(feedback))
	}

	out.Text = last
	out.Capped = true
	a.logger.Warn().
		Int("max_iterations", maxIter).
		Err(errors.ErrMaxIterations).
		Msgf("%s reached its iteration limit, using its last reply", a.def.Title)
	return out, nil
}

func (a *Agent) runTools(ctx context.Context, action Action) []prompts.ToolResultLine {
	if action.Problem != "" {
		return []prompts.ToolResultLine{{Tool: "protocol", Message: action.Problem}}
	}
	results := make([]prompts.ToolResultLine, 0, len(action.Calls))
	for _, c := range action.Calls {
		var res tools.Result
		if a.tools == nil {
			res = tools.Result{Message: fmt.Sprintf("Error: %v: %s (this agent has no tools)", errors.ErrToolNotFound, c.ToolName)}
		} else {
			res = a.tools.Call(ctx, c.ToolName, c.ToolInput)
		}
		results = append(results, prompts.ToolResultLine{Tool: c.ToolName, Message: res.Message})
	}
	return results
}

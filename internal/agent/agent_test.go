package agent

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/llm/llmtest"
	"github.com/lunacore/luna/internal/tools"
)

type fakeTools struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTools) Specs() []tools.Spec {
	return []tools.Spec{{Name: tools.NameWriteFile, Description: "write"}}
}

func (f *fakeTools) Call(_ context.Context, name string, input json.RawMessage) tools.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+" "+string(input))
	return tools.Result{OK: true, Message: "Wrote main.py (1 lines, 5 bytes)"}
}

func developer(t *testing.T, maxIter int) Definition {
	t.Helper()
	def := Definitions(config.AgentsConfig{})[1]
	require.Equal(t, domain.RoleDeveloper, def.Role)
	def.MaxIterations = maxIter
	return def
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(config.AgentsConfig{Tester: config.AgentConfig{MaxIterations: 9}})
	require.Len(t, defs, 3)

	assert.Equal(t, []domain.Role{domain.RoleSupervisor, domain.RoleDeveloper, domain.RoleTester},
		[]domain.Role{defs[0].Role, defs[1].Role, defs[2].Role})
	assert.Equal(t, 3, defs[0].MaxIterations)
	assert.Equal(t, 6, defs[1].MaxIterations)
	assert.Equal(t, 9, defs[2].MaxIterations)

	assert.Equal(t, domain.BackendCloud, defs[0].DefaultBackend)
	assert.Equal(t, domain.BackendLocal, defs[1].DefaultBackend)
	assert.Contains(t, defs[1].Tools, tools.NameAskSupervisor)
	assert.NotContains(t, defs[2].Tools, tools.NameAskSupervisor)
	for _, d := range defs {
		assert.False(t, d.AllowDelegate, d.Role)
	}
}

func TestExecute_ToolThenFinal(t *testing.T) {
	backend := llmtest.NewLocal(
		`{"action":"tool","tool_name":"write_file","tool_input":{"filename":"main.py","content":"x = 1"}}`,
		`{"action":"final","final":"Wrote main.py"}`,
	)
	ft := &fakeTools{}
	a := New(developer(t, 6), backend, ft, zerolog.Nop())

	out, err := a.Execute(context.Background(), Task{
		Description:    "Implement it.",
		ExpectedOutput: "Code",
		Context:        []string{"the plan"},
	})
	require.NoError(t, err)
	assert.Equal(t, Output{Text: "Wrote main.py", Iterations: 2, ToolCalls: 1}, out)
	require.Len(t, ft.calls, 1)
	assert.True(t, strings.HasPrefix(ft.calls[0], "write_file "))

	calls := backend.Calls()
	require.Len(t, calls, 2)
	first := calls[0]
	require.Len(t, first, 2)
	assert.Equal(t, domain.MessageSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "Principal Full-Stack Developer")
	assert.Contains(t, first[1].Content, "the plan")

	second := calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, domain.MessageAssistant, second[2].Role)
	assert.Equal(t, domain.MessageUser, second[3].Role)
	assert.Contains(t, second[3].Content, "[write_file] Wrote main.py (1 lines, 5 bytes)")
}

func TestExecute_PlainTextIsFinal(t *testing.T) {
	a := New(developer(t, 6), llmtest.New("All done."), &fakeTools{}, zerolog.Nop())
	out, err := a.Execute(context.Background(), Task{Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, "All done.", out.Text)
	assert.Equal(t, 1, out.Iterations)
}

func TestExecute_CapUsesLastReplyAndWarns(t *testing.T) {
	reply := `{"action":"tool","tool_name":"write_file","tool_input":{"filename":"a.py","content":"x"}}`
	backend := llmtest.New()
	backend.Fallback = reply
	ft := &fakeTools{}
	var logs bytes.Buffer
	a := New(developer(t, 2), backend, ft, zerolog.New(&logs))

	out, err := a.Execute(context.Background(), Task{Description: "x"})
	require.NoError(t, err)
	assert.True(t, out.Capped)
	assert.Equal(t, reply, out.Text)
	assert.Equal(t, 2, out.Iterations)
	assert.Len(t, ft.calls, 2, "tools of the last turn still run")
	assert.Equal(t, 2, backend.CallCount())

	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "iteration limit")
	assert.Contains(t, logs.String(), `"category":"agent"`)
}

func TestExecute_BackendErrorPropagates(t *testing.T) {
	boom := stderrors.New("connection refused")
	backend := llmtest.New().Push(llmtest.Reply{Err: boom})
	a := New(developer(t, 3), backend, &fakeTools{}, zerolog.Nop())

	_, err := a.Execute(context.Background(), Task{Description: "x"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "developer turn 1")
}

func TestExecute_ProtocolProblemFedBack(t *testing.T) {
	backend := llmtest.New(`{"action":"tool"}`, "done")
	a := New(developer(t, 3), backend, &fakeTools{}, zerolog.Nop())

	out, err := a.Execute(context.Background(), Task{Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, "done", out.Text)
	assert.Contains(t, backend.Calls()[1][3].Content, "tool_name")
}

func TestExecute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := llmtest.New("never")
	a := New(developer(t, 3), backend, &fakeTools{}, zerolog.Nop())

	_, err := a.Execute(ctx, Task{Description: "x"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, backend.CallCount())
}

func TestSystemPrompt_NoTools(t *testing.T) {
	def := developer(t, 1)
	a := New(def, llmtest.New(), nil, zerolog.Nop())
	prompt, err := a.SystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, prompt, "You have no tools.")
}

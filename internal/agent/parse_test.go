package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Run("single tool call", func(t *testing.T) {
		a := ParseAction(`{"action":"tool","tool_name":"write_file","tool_input":{"filename":"a.py","content":"x"}}`)
		assert.Equal(t, ActionTool, a.Kind)
		require.Len(t, a.Calls, 1)
		assert.Equal(t, "write_file", a.Calls[0].ToolName)
		assert.JSONEq(t, `{"filename":"a.py","content":"x"}`, string(a.Calls[0].ToolInput))
	})

	t.Run("batched calls", func(t *testing.T) {
		a := ParseAction(`{"action":"tool","calls":[
			{"tool_name":"write_file","tool_input":{"filename":"a.py","content":"x"}},
			{"tool_name":"","tool_input":{}},
			{"tool_name":"validate_python_syntax","tool_input":{"code":"x"}}]}`)
		assert.Equal(t, ActionTool, a.Kind)
		require.Len(t, a.Calls, 2)
		assert.Equal(t, "validate_python_syntax", a.Calls[1].ToolName)
	})

	t.Run("fenced json", func(t *testing.T) {
		a := ParseAction("```json\n{\"action\":\"final\",\"final\":\"done\"}\n```")
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, "done", a.Final)
	})

	t.Run("action inferred from tool_name", func(t *testing.T) {
		a := ParseAction(`{"tool_name":"write_file","tool_input":{}}`)
		assert.Equal(t, ActionTool, a.Kind)
	})

	t.Run("final object kept as json", func(t *testing.T) {
		a := ParseAction(`{"action":"final","final":{"modules":[]}}`)
		assert.Equal(t, `{"modules":[]}`, a.Final)
	})

	t.Run("bare object is the answer", func(t *testing.T) {
		a := ParseAction(`{"project_name":"calc","modules":[]}`)
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, `{"project_name":"calc","modules":[]}`, a.Final)
	})

	t.Run("plain text is final", func(t *testing.T) {
		a := ParseAction("  I created main.py and tests.  ")
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, "I created main.py and tests.", a.Final)
	})

	t.Run("broken json is final text", func(t *testing.T) {
		a := ParseAction(`{"action":"tool", oops`)
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, `{"action":"tool", oops`, a.Final)
	})

	t.Run("tool action without name reports a problem", func(t *testing.T) {
		a := ParseAction(`{"action":"tool"}`)
		assert.Equal(t, ActionTool, a.Kind)
		assert.Empty(t, a.Calls)
		assert.Contains(t, a.Problem, "tool_name")
	})

	t.Run("unknown action is final text", func(t *testing.T) {
		a := ParseAction(`{"action":"dance"}`)
		assert.Equal(t, ActionFinal, a.Kind)
	})
}

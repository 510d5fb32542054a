package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	var reply struct {
		Action    string            `json:"action"`
		ToolName  string            `json:"tool_name"`
		ToolInput map[string]string `json:"tool_input"`
	}
	require.NoError(t, json.Unmarshal([]byte(WriteFile(t, "a.py", "x = 1\n")), &reply))
	assert.Equal(t, "tool", reply.Action)
	assert.Equal(t, "write_file", reply.ToolName)
	assert.Equal(t, map[string]string{"filename": "a.py", "content": "x = 1\n"}, reply.ToolInput)
}

func TestFinal(t *testing.T) {
	assert.JSONEq(t, `{"action":"final","final":"done"}`, Final("done"))
}

func TestCalculatorBackends(t *testing.T) {
	cloud, local := CalculatorBackends(t)

	first, err := cloud.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, first, "plan.json")

	first, err = local.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, first, "calc.py")
	assert.Equal(t, 1, local.CallCount())
}

// Package testutil holds fixtures shared by luna tests: mock errors and
// scripted model replies for the agent tool loop. Only _test.go files
// import it.
package testutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lunacore/luna/internal/llm/llmtest"
)

// Mock errors returned by fake backends and publishers.
var (
	// ErrMockNetwork simulates an unreachable model server.
	ErrMockNetwork = errors.New("connection refused")

	// ErrMockQuota simulates a provider rejecting a call.
	ErrMockQuota = errors.New("quota exceeded")

	// ErrMockBucket simulates an object store failure.
	ErrMockBucket = errors.New("bucket unreachable")
)

// CalculatorBrief is the end-to-end example brief.
const CalculatorBrief = "Create a simple calculator with add and subtract"

// CalculatorPlan is the plan the scripted supervisor writes for CalculatorBrief.
const CalculatorPlan = `{"project_name":"simple_calculator","template":"cli",` +
	`"modules":[{"path":"calc.py","purpose":"arithmetic"},{"path":"main.py","purpose":"entry point"}],` +
	`"test_plan":["add","subtract"]}`

// Calculator sources written by the scripted developer and tester.
const (
	CalculatorCode = "def add(a, b):\n    return a + b\n\n\ndef subtract(a, b):\n    return a - b\n"
	CalculatorTest = "from calc import add\n\n\ndef test_add():\n    assert add(1, 2) == 3\n"
)

// planFile mirrors constants.PlanFileName without importing it.
const planFile = "plan.json"

// ToolCall returns a model reply asking for tool with input.
func ToolCall(t testing.TB, tool string, input any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"action":     "tool",
		"tool_name":  tool,
		"tool_input": input,
	})
	if err != nil {
		t.Fatalf("marshal tool call: %v", err)
	}
	return string(data)
}

// WriteFile returns a reply calling write_file.
func WriteFile(t testing.TB, filename, content string) string {
	t.Helper()
	return ToolCall(t, "write_file", map[string]string{"filename": filename, "content": content})
}

// Final returns a reply that ends the agent loop with text.
func Final(text string) string {
	data, _ := json.Marshal(map[string]string{"action": "final", "final": text})
	return string(data)
}

// CalculatorBackends scripts a full successful run of CalculatorBrief. The
// developer and the tester share the local backend and run one after the
// other.
func CalculatorBackends(t testing.TB) (cloud, local *llmtest.Backend) {
	t.Helper()
	cloud = llmtest.New(
		WriteFile(t, planFile, CalculatorPlan),
		Final("plan ready"),
	)
	local = llmtest.NewLocal(
		WriteFile(t, "calc.py", CalculatorCode),
		Final("calc.py written"),
		WriteFile(t, "tests/test_calc.py", CalculatorTest),
		Final("tests written"),
	)
	return cloud, local
}

// Package tools implements the functions agents can call while working:
// writing project files, checking Python syntax, and asking the supervisor
// for guidance.
//
// Tools never return Go errors to the model. Every call produces a Result
// whose Message is what the agent reads; host code inspects OK.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Tool names as the model sees them.
const (
	NameWriteFile      = "write_file"
	NameValidatePython = "validate_python_syntax"
	NameAskSupervisor  = "ask_supervisor"
)

// Param describes one input field of a tool.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Spec describes a tool to the model.
type Spec struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  []Param `json:"parameters"`
}

// Tool is a callable function exposed to agents.
type Tool interface {
	Spec() Spec
	Call(ctx context.Context, input json.RawMessage) Result
}

// Result is the outcome of one tool call.
type Result struct {
	// OK is false when the tool failed; Message then explains why.
	OK bool `json:"ok"`

	// Message is the text returned to the agent.
	Message string `json:"message"`

	// Path is the relative path written by write_file, empty otherwise.
	Path string `json:"path,omitempty"`
}

// String returns the message shown to the agent.
func (r Result) String() string {
	return r.Message
}

func okResult(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failResult(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// decodeInput unmarshals tool arguments. Models sometimes send the arguments
// object as a JSON string, so a quoted object is unwrapped first.
func decodeInput(input json.RawMessage, v any) error {
	raw := []byte(strings.TrimSpace(string(input)))
	if len(raw) == 0 {
		return fmt.Errorf("missing arguments") //nolint:err113 // message for the model
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		raw = []byte(inner)
	}
	return json.Unmarshal(raw, v)
}

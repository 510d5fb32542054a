package agent

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Action kinds in a model reply.
const (
	ActionTool  = "tool"
	ActionFinal = "final"
)

// ToolCall is one requested tool invocation.
type ToolCall struct {
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
}

// Action is a parsed model reply.
type Action struct {
	Kind  string
	Calls []ToolCall
	// Final is the answer text when Kind is ActionFinal.
	Final string
	// Problem is set for a tool action the loop cannot run, e.g. one without
	// a tool name. It is sent back to the model.
	Problem string
}

// envelope is the JSON shape the tool protocol asks for.
type envelope struct {
	Action    string          `json:"action"`
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
	Calls     []ToolCall      `json:"calls"`
	Final     json.RawMessage `json:"final"`
}

//nolint:gochecknoglobals // Compiled once
var fenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\n(.*?)\n?```$")

// ParseAction interprets a model reply. Replies that are not a JSON object,
// or are an object without action fields, are final answers.
func ParseAction(reply string) Action {
	text := strings.TrimSpace(reply)
	body := text
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		body = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(body, "{") {
		return Action{Kind: ActionFinal, Final: text}
	}

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return Action{Kind: ActionFinal, Final: text}
	}

	kind := strings.ToLower(strings.TrimSpace(env.Action))
	if kind == "" {
		switch {
		case env.ToolName != "" || len(env.Calls) > 0:
			kind = ActionTool
		case len(env.Final) > 0:
			kind = ActionFinal
		default:
			// A bare JSON object is itself the answer.
			return Action{Kind: ActionFinal, Final: body}
		}
	}

	switch kind {
	case ActionTool:
		return toolAction(env)
	case ActionFinal:
		return Action{Kind: ActionFinal, Final: finalText(env.Final, body)}
	default:
		return Action{Kind: ActionFinal, Final: text}
	}
}

func toolAction(env envelope) Action {
	var calls []ToolCall
	if env.ToolName != "" {
		calls = append(calls, ToolCall{ToolName: env.ToolName, ToolInput: env.ToolInput})
	}
	for _, c := range env.Calls {
		if strings.TrimSpace(c.ToolName) == "" {
			continue
		}
		calls = append(calls, c)
	}
	if len(calls) == 0 {
		return Action{Kind: ActionTool, Problem: `Error: a tool action needs "tool_name" or a non-empty "calls" list.`}
	}
	return Action{Kind: ActionTool, Calls: calls}
}

// finalText unquotes a JSON string answer and keeps any other JSON as is.
func finalText(raw json.RawMessage, fallback string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

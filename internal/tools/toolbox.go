package tools

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/metrics"
)

// Call records one tool invocation.
type Call struct {
	Role    domain.Role `json:"role"`
	Tool    string      `json:"tool"`
	OK      bool        `json:"ok"`
	Path    string      `json:"path,omitempty"`
	Message string      `json:"message"`
}

// Toolbox holds the tools of one run and records every call made through it.
// It is safe for concurrent use.
type Toolbox struct {
	mu       sync.Mutex
	tools    map[string]Tool
	calls    []Call
	recorder metrics.Recorder
	logger   zerolog.Logger
}

// NewToolbox creates a toolbox holding the given tools.
func NewToolbox(recorder metrics.Recorder, logger zerolog.Logger, tools ...Tool) *Toolbox {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	b := &Toolbox{
		tools:    make(map[string]Tool, len(tools)),
		recorder: recorder,
		logger:   logging.WithCategory(logger, logging.CategoryTool),
	}
	for _, t := range tools {
		b.tools[t.Spec().Name] = t
	}
	return b
}

// Has reports whether a tool is registered under name.
func (b *Toolbox) Has(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tools[name]
	return ok
}

// Call runs the named tool on behalf of role.
func (b *Toolbox) Call(ctx context.Context, role domain.Role, name string, input json.RawMessage) Result {
	b.mu.Lock()
	tool, ok := b.tools[name]
	b.mu.Unlock()

	var res Result
	if ok {
		res = tool.Call(ctx, input)
	} else {
		res = failResult("Error: %v: %s", errors.ErrToolNotFound, name)
	}

	b.mu.Lock()
	b.calls = append(b.calls, Call{Role: role, Tool: name, OK: res.OK, Path: res.Path, Message: res.Message})
	b.mu.Unlock()

	b.recorder.ToolCall(role.String(), name, res.OK)
	if res.OK {
		b.logger.Debug().Str("role", role.String()).Str("tool", name).Msg(res.Message)
	} else {
		b.logger.Warn().Str("role", role.String()).Str("tool", name).Msg(res.Message)
	}
	return res
}

// Calls returns a copy of the call record.
func (b *Toolbox) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount returns how many calls role made.
func (b *Toolbox) CallCount(role domain.Role) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Role == role {
			n++
		}
	}
	return n
}

// WrittenFiles returns the distinct paths role wrote successfully, in order.
func (b *Toolbox) WrittenFiles(role domain.Role) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, c := range b.calls {
		if c.Role != role || c.Tool != NameWriteFile || !c.OK || c.Path == "" {
			continue
		}
		if _, dup := seen[c.Path]; dup {
			continue
		}
		seen[c.Path] = struct{}{}
		out = append(out, c.Path)
	}
	return out
}

// For returns the subset of tools a role may use.
func (b *Toolbox) For(role domain.Role, names []string) *Set {
	allowed := make([]string, 0, len(names))
	for _, n := range names {
		if b.Has(n) {
			allowed = append(allowed, n)
		}
	}
	return &Set{box: b, role: role, names: allowed}
}

// Set is a role's view of a toolbox.
type Set struct {
	box   *Toolbox
	role  domain.Role
	names []string
}

// Specs returns the specs of the role's tools.
func (s *Set) Specs() []Spec {
	s.box.mu.Lock()
	defer s.box.mu.Unlock()
	specs := make([]Spec, 0, len(s.names))
	for _, n := range s.names {
		specs = append(specs, s.box.tools[n].Spec())
	}
	return specs
}

// Call runs a tool if the role is allowed to use it.
func (s *Set) Call(ctx context.Context, name string, input json.RawMessage) Result {
	name = strings.TrimSpace(name)
	for _, n := range s.names {
		if n == name {
			return s.box.Call(ctx, s.role, name, input)
		}
	}
	res := failResult("Error: %v: %s (available: %s)", errors.ErrToolNotFound, name, strings.Join(s.names, ", "))
	s.box.mu.Lock()
	s.box.calls = append(s.box.calls, Call{Role: s.role, Tool: name, Message: res.Message})
	s.box.mu.Unlock()
	s.box.recorder.ToolCall(s.role.String(), name, false)
	s.box.logger.Warn().Str("role", s.role.String()).Str("tool", name).Msg(res.Message)
	return res
}

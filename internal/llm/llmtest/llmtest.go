// Package llmtest provides scripted model backends for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/lunacore/luna/internal/domain"
)

// Reply is one scripted model answer. When Err is set it is returned instead.
type Reply struct {
	Text string
	Err  error
}

// Backend replays scripted replies in order and records every conversation it
// receives. Once the script is exhausted it returns Fallback, or an error if
// Fallback is empty. A non-nil Func overrides the script.
type Backend struct {
	BackendName string
	BackendKind domain.BackendKind
	ModelName   string
	Fallback    string
	Func        func(ctx context.Context, messages []domain.Message) (string, error)

	mu     sync.Mutex
	script []Reply
	calls  [][]domain.Message
}

// New creates a cloud backend that replays texts.
func New(texts ...string) *Backend {
	b := &Backend{BackendName: "fake:cloud", BackendKind: domain.BackendCloud, ModelName: "fake-model"}
	for _, t := range texts {
		b.script = append(b.script, Reply{Text: t})
	}
	return b
}

// NewLocal creates a local backend that replays texts.
func NewLocal(texts ...string) *Backend {
	b := New(texts...)
	b.BackendName = "fake:local"
	b.BackendKind = domain.BackendLocal
	b.ModelName = "fake-local-model"
	return b
}

// Push appends replies to the script.
func (b *Backend) Push(replies ...Reply) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.script = append(b.script, replies...)
	return b
}

// Name implements llm.Backend.
func (b *Backend) Name() string { return b.BackendName }

// Kind implements llm.Backend.
func (b *Backend) Kind() domain.BackendKind { return b.BackendKind }

// Model implements llm.Backend.
func (b *Backend) Model() string { return b.ModelName }

// Complete implements llm.Backend.
func (b *Backend) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	snapshot := make([]domain.Message, len(messages))
	copy(snapshot, messages)
	b.calls = append(b.calls, snapshot)
	fn := b.Func
	var next *Reply
	if len(b.script) > 0 {
		r := b.script[0]
		b.script = b.script[1:]
		next = &r
	}
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	if next != nil {
		return next.Text, next.Err
	}
	if b.Fallback != "" {
		return b.Fallback, nil
	}
	return "", fmt.Errorf("llmtest: %s has no scripted reply left", b.BackendName)
}

// Calls returns every conversation received so far.
func (b *Backend) Calls() [][]domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]domain.Message, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount returns the number of Complete calls.
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

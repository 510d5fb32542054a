package llm

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/llm/llmtest"
	"github.com/lunacore/luna/internal/metrics"
)

func TestInstrumented_RecordsCalls(t *testing.T) {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	inner := llmtest.NewLocal().Push(
		llmtest.Reply{Text: "ok"},
		llmtest.Reply{Err: stderrors.New("boom")},
	)
	b := NewInstrumented(inner, domain.RoleDeveloper, collector, zerolog.Nop())

	reply, err := b.Complete(context.Background(), []domain.Message{domain.UserMessage("x")})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	_, err = b.Complete(context.Background(), nil)
	require.Error(t, err)

	snap := collector.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "developer", snap[0].Role)
	assert.Equal(t, 2, snap[0].LLMCalls)
	assert.Equal(t, 1, snap[0].LLMFailures)

	assert.Equal(t, "fake:local", b.Name(), "identity passes through")
	assert.Equal(t, domain.BackendLocal, b.Kind())
}

func TestInstrumented_NilRecorder(t *testing.T) {
	b := NewInstrumented(llmtest.New("hi"), domain.RoleTester, nil, zerolog.Nop())
	reply, err := b.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", reply)
}

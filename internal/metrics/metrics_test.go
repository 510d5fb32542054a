package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_LLMCalls(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.LLMCall("developer", "local", 2*time.Second, nil)
	c.LLMCall("developer", "local", time.Second, errors.New("timeout"))
	c.LLMCall("supervisor", "cloud", time.Second, nil)

	assert.InDelta(t, 2, testutil.ToFloat64(c.llmCalls.WithLabelValues("developer", "local")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.llmFailures.WithLabelValues("developer", "local")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.llmCalls.WithLabelValues("supervisor", "cloud")), 0)

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "developer", snap[0].Role)
	assert.Equal(t, 2, snap[0].LLMCalls)
	assert.Equal(t, 1, snap[0].LLMFailures)
	assert.InDelta(t, 3.0, snap[0].LLMSeconds, 1e-9)
	assert.Equal(t, "supervisor", snap[1].Role)
}

func TestCollector_ToolCalls(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ToolCall("developer", "write_file", true)
	c.ToolCall("developer", "write_file", false)
	c.ToolCall("developer", "validate_python_syntax", true)

	assert.InDelta(t, 1, testutil.ToFloat64(c.toolCalls.WithLabelValues("developer", "write_file", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.toolCalls.WithLabelValues("developer", "write_file", "error")), 0)

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 3, snap[0].ToolCalls)
	assert.Equal(t, 1, snap[0].ToolFailures)
	assert.Equal(t, 1, snap[0].FilesWritten)
}

func TestCollector_Runs(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RunStarted("cli")
	assert.InDelta(t, 1, testutil.ToFloat64(c.runsActive), 0)

	c.StageFinished("planning", "supervisor", time.Second, true)
	c.StageFinished("testing", "tester", time.Second, false)
	c.RunFinished("error", 5*time.Second)

	assert.InDelta(t, 0, testutil.ToFloat64(c.runsActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runsStarted.WithLabelValues("cli")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runsFinished.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.stageFailures.WithLabelValues("testing", "tester")), 0)
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.RunStarted("cli")
		r.LLMCall("x", "y", time.Second, nil)
		r.ToolCall("x", "y", true)
		r.StageFinished("a", "b", 0, true)
		r.RunFinished("success", 0)
	})
}

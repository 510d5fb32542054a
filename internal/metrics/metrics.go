// Package metrics records per-agent activity: model calls, tool calls, and
// stage outcomes. Values are exported to Prometheus and kept in memory for
// the dashboard.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives metric events from the pipeline.
type Recorder interface {
	// RunStarted is called when a generation begins.
	RunStarted(template string)

	// RunFinished is called once per generation with its final status.
	RunFinished(status string, duration time.Duration)

	// StageFinished is called after each pipeline stage.
	StageFinished(stage, role string, duration time.Duration, ok bool)

	// LLMCall is called after every model completion.
	LLMCall(role, backend string, duration time.Duration, err error)

	// ToolCall is called after every tool invocation.
	ToolCall(role, tool string, ok bool)
}

// NoopRecorder discards every event.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

// RunStarted implements Recorder.
func (NoopRecorder) RunStarted(string) {}

// RunFinished implements Recorder.
func (NoopRecorder) RunFinished(string, time.Duration) {}

// StageFinished implements Recorder.
func (NoopRecorder) StageFinished(string, string, time.Duration, bool) {}

// LLMCall implements Recorder.
func (NoopRecorder) LLMCall(string, string, time.Duration, error) {}

// ToolCall implements Recorder.
func (NoopRecorder) ToolCall(string, string, bool) {}

// AgentStats is the in-memory tally for one role.
type AgentStats struct {
	Role         string  `json:"role"`
	LLMCalls     int     `json:"llm_calls"`
	LLMFailures  int     `json:"llm_failures"`
	LLMSeconds   float64 `json:"llm_seconds"`
	ToolCalls    int     `json:"tool_calls"`
	ToolFailures int     `json:"tool_failures"`
	FilesWritten int     `json:"files_written"`
}

// Collector implements Recorder on top of Prometheus collectors.
type Collector struct {
	runsStarted   *prometheus.CounterVec
	runsFinished  *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runsActive    prometheus.Gauge
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	llmCalls      *prometheus.CounterVec
	llmFailures   *prometheus.CounterVec
	llmDuration   *prometheus.HistogramVec
	toolCalls     *prometheus.CounterVec

	mu     sync.Mutex
	agents map[string]*AgentStats
}

var _ Recorder = (*Collector)(nil)

// NewCollector registers luna's collectors with reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	llmBuckets := prometheus.ExponentialBuckets(0.25, 2, 10)

	return &Collector{
		runsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_runs_started_total",
			Help: "Generations started, by template",
		}, []string{"template"}),
		runsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_runs_finished_total",
			Help: "Generations finished, by status",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "luna_run_duration_seconds",
			Help:    "End-to-end generation duration",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		runsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "luna_runs_active",
			Help: "Generations currently in progress",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "luna_stage_duration_seconds",
			Help:    "Pipeline stage duration",
			Buckets: llmBuckets,
		}, []string{"stage", "role"}),
		stageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_stage_failures_total",
			Help: "Pipeline stages that failed",
		}, []string{"stage", "role"}),
		llmCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_llm_calls_total",
			Help: "Model completions, by role and backend",
		}, []string{"role", "backend"}),
		llmFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_llm_failures_total",
			Help: "Model completions that returned an error",
		}, []string{"role", "backend"}),
		llmDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "luna_llm_call_duration_seconds",
			Help:    "Model completion latency",
			Buckets: llmBuckets,
		}, []string{"role", "backend"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luna_tool_calls_total",
			Help: "Tool invocations, by role, tool, and outcome",
		}, []string{"role", "tool", "outcome"}),
		agents: make(map[string]*AgentStats),
	}
}

// RunStarted implements Recorder.
func (c *Collector) RunStarted(template string) {
	c.runsStarted.WithLabelValues(template).Inc()
	c.runsActive.Inc()
}

// RunFinished implements Recorder.
func (c *Collector) RunFinished(status string, duration time.Duration) {
	c.runsFinished.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.runsActive.Dec()
}

// StageFinished implements Recorder.
func (c *Collector) StageFinished(stage, role string, duration time.Duration, ok bool) {
	c.stageDuration.WithLabelValues(stage, role).Observe(duration.Seconds())
	if !ok {
		c.stageFailures.WithLabelValues(stage, role).Inc()
	}
}

// LLMCall implements Recorder.
func (c *Collector) LLMCall(role, backend string, duration time.Duration, err error) {
	c.llmCalls.WithLabelValues(role, backend).Inc()
	c.llmDuration.WithLabelValues(role, backend).Observe(duration.Seconds())
	if err != nil {
		c.llmFailures.WithLabelValues(role, backend).Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats(role)
	s.LLMCalls++
	s.LLMSeconds += duration.Seconds()
	if err != nil {
		s.LLMFailures++
	}
}

// ToolCall implements Recorder.
func (c *Collector) ToolCall(role, tool string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	c.toolCalls.WithLabelValues(role, tool, outcome).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats(role)
	s.ToolCalls++
	if !ok {
		s.ToolFailures++
	}
	if ok && tool == "write_file" {
		s.FilesWritten++
	}
}

// Snapshot returns the per-agent tallies sorted by role.
func (c *Collector) Snapshot() []AgentStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]AgentStats, 0, len(c.agents))
	for _, s := range c.agents {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// stats must be called with c.mu held.
func (c *Collector) stats(role string) *AgentStats {
	s, ok := c.agents[role]
	if !ok {
		s = &AgentStats{Role: role}
		c.agents[role] = s
	}
	return s
}

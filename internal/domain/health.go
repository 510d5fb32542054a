package domain

// Health statuses.
const (
	HealthOK      = "ok"
	HealthPartial = "partial"

	AgentCheckSuccess = "success"
	AgentCheckFailed  = "failed"
)

// AgentCheck is the health of one agent's backend.
type AgentCheck struct {
	Status   string      `json:"status"`
	Backend  BackendKind `json:"backend"`
	Model    string      `json:"model"`
	Duration float64     `json:"duration"`
	Reply    string      `json:"reply,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// BackendInfo describes the configured model backends.
type BackendInfo struct {
	CloudModel     string `json:"cloud_model"`
	LocalModel     string `json:"local_model"`
	LocalAvailable bool   `json:"local_available"`
}

// HealthReport is the outcome of a connection check across all agents.
// Status is "ok" only when every agent succeeded.
type HealthReport struct {
	Status      string              `json:"status"`
	AgentsCount int                 `json:"agents_count"`
	Backend     BackendInfo         `json:"llm_backend"`
	AgentTests  map[Role]AgentCheck `json:"agent_tests"`
}

// OK reports whether every agent check succeeded.
func (h HealthReport) OK() bool {
	return h.Status == HealthOK
}

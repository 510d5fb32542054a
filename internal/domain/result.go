package domain

import (
	"math"
	"time"
)

// RunStatus is the outcome of a generation call.
type RunStatus string

// Run statuses. Pending and running are only observed through the web server.
const (
	RunPending RunStatus = "pending"
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// Stage is one step of the sequential pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StagePlanning     Stage = "planning"
	StageImplementing Stage = "implementing"
	StageTesting      Stage = "testing"
	StageDone         Stage = "done"
)

// StageReport summarizes one executed stage.
type StageReport struct {
	Stage        Stage       `json:"stage"`
	Role         Role        `json:"role"`
	Backend      BackendKind `json:"backend"`
	Status       RunStatus   `json:"status"`
	Duration     float64     `json:"duration"`
	Iterations   int         `json:"iterations"`
	ToolCalls    int         `json:"tool_calls"`
	FilesWritten []string    `json:"files_written,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// Result is what a generation call returns. Files holds every file of the
// run directory keyed by slash-separated relative path, and is only filled
// after the pipeline has completed successfully.
type Result struct {
	RunID           string            `json:"run_id"`
	Status          RunStatus         `json:"status"`
	ExecutionTime   float64           `json:"execution_time"`
	Files           map[string]string `json:"files,omitempty"`
	AgentsCount     int               `json:"agents_count"`
	TasksCount      int               `json:"tasks_count"`
	Output          string            `json:"result,omitempty"`
	OutputDirectory string            `json:"output_directory,omitempty"`
	ProjectName     string            `json:"project_name"`
	Template        Template          `json:"template"`
	Routing         *RoutingDecision  `json:"routing,omitempty"`
	Stages          []StageReport     `json:"stages,omitempty"`
	ArchiveURL      string            `json:"archive_url,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// Succeeded reports whether the run completed.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == RunSuccess
}

// Seconds converts d to seconds rounded to hundredths.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

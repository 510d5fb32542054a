// Package constants provides centralized constant values used throughout luna.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Artifact file names written into every run directory.
const (
	// PlanFileName is the structured plan produced by the planning stage.
	PlanFileName = "plan.json"

	// RoutingFileName records the backend chosen for each role.
	RoutingFileName = "routing.json"
)

// Directory names used by luna for organizing data.
const (
	// LunaHome is the hidden directory name where luna stores logs and config.
	// This directory is created in the user's home directory.
	LunaHome = ".luna"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// DefaultOutputDir is where run directories are created when no
	// output directory is configured.
	DefaultOutputDir = "output"
)

// Project naming.
const (
	// DefaultProjectName is used when no name can be derived from the brief.
	DefaultProjectName = "lunacore_project"

	// RunDirTimeFormat is the timestamp suffix layout of a run directory.
	RunDirTimeFormat = "20060102_150405"

	// ProjectNameWords is how many brief words make up a derived name.
	ProjectNameWords = 2

	// ProjectNameMinWordLen is the shortest word considered for a derived name.
	ProjectNameMinWordLen = 3
)

// Model defaults.
const (
	// DefaultCloudModel is the default cloud chat model.
	DefaultCloudModel = "gpt-4o-mini"

	// DefaultCloudBaseURL is the OpenAI-compatible API root.
	DefaultCloudBaseURL = "https://api.openai.com/v1"

	// DefaultGeminiModel is used when the gemini provider is selected without a model.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultCloudTemperature keeps cloud output close to deterministic.
	DefaultCloudTemperature = 0.2

	// DefaultLocalModel is the default Ollama model.
	DefaultLocalModel = "llama3.1:8b"

	// DefaultLocalBaseURL is where a local Ollama server listens by default.
	DefaultLocalBaseURL = "http://localhost:11434"

	// DefaultLocalTemperature is the sampling temperature for the local model.
	DefaultLocalTemperature = 0.7

	// HealthPrompt is the fixed prompt sent to every agent by the health check.
	HealthPrompt = "Reply with the single word OK."
)

// Timeout configurations for various operations.
const (
	// DefaultLLMTimeout bounds a single model call.
	DefaultLLMTimeout = 3 * time.Minute

	// DefaultStageTimeout bounds one pipeline stage including all its model calls.
	DefaultStageTimeout = 15 * time.Minute

	// DefaultProbeTimeout bounds the local backend reachability probe.
	DefaultProbeTimeout = 3 * time.Second

	// DefaultShutdownTimeout bounds graceful web server shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Agent iteration caps.
const (
	// DefaultSupervisorMaxIter caps supervisor tool-loop turns.
	DefaultSupervisorMaxIter = 3

	// DefaultDeveloperMaxIter caps developer tool-loop turns.
	DefaultDeveloperMaxIter = 6

	// DefaultTesterMaxIter caps tester tool-loop turns.
	DefaultTesterMaxIter = 4
)

// Web server defaults.
const (
	// DefaultServerAddr is the dashboard listen address.
	DefaultServerAddr = "127.0.0.1:8501"

	// DefaultMaxConcurrentRuns bounds in-flight generations in the web server.
	DefaultMaxConcurrentRuns = 1

	// DefaultRunStoreSize is how many finished runs the web server remembers.
	DefaultRunStoreSize = 128

	// DefaultActivityCapacity is how many activity entries are kept in memory.
	DefaultActivityCapacity = 1000
)

// Rotating log file settings.
const (
	// LogMaxSizeMB is the size at which the CLI log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of rotated files.
	LogMaxAgeDays = 28

	// LogCompress gzips rotated files.
	LogCompress = true
)

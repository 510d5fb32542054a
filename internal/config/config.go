// Package config provides configuration management for luna with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the commands)
//  2. Environment variables (LUNA_* prefix, plus OLLAMA_BASE_URL)
//  3. Project config (.luna/config.yaml)
//  4. Global config (~/.luna/config.yaml)
//  5. Built-in defaults
//
// A .env file in the working directory is loaded into the process
// environment before any of the above.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"os"
	"strings"
	"time"
)

// Cloud providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the root configuration structure for luna.
type Config struct {
	// Cloud configures the required cloud model backend.
	Cloud CloudConfig `yaml:"cloud" mapstructure:"cloud"`

	// Local configures the optional locally hosted model backend.
	Local LocalConfig `yaml:"local" mapstructure:"local"`

	// Agents holds per-role agent settings.
	Agents AgentsConfig `yaml:"agents" mapstructure:"agents"`

	// Pipeline controls stage execution.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`

	// Routing controls complexity-based backend selection.
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`

	// Output controls where run directories are created.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Server configures the web dashboard.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Archive configures optional publishing of generated projects.
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`

	// Log configures the in-memory activity log.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// CloudConfig contains settings for the cloud model backend.
type CloudConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "gemini".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the provider model name. Default: gpt-4o-mini
	Model string `yaml:"model" mapstructure:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in config files.
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`

	// BaseURL is the OpenAI-compatible API root. Ignored for gemini.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Temperature is the sampling temperature. Default: 0.2
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// APIKey returns the credential from the configured environment variable.
func (c CloudConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// LocalConfig contains settings for the local Ollama backend.
type LocalConfig struct {
	// Enabled turns the local backend on. When false every role uses the cloud.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the Ollama server root. OLLAMA_BASE_URL overrides it.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Model is the Ollama model tag. Default: llama3.1:8b
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the sampling temperature. Default: 0.7
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ProbeTimeout bounds the reachability check.
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
}

// AgentsConfig holds per-role settings.
type AgentsConfig struct {
	Supervisor AgentConfig `yaml:"supervisor" mapstructure:"supervisor"`
	Developer  AgentConfig `yaml:"developer" mapstructure:"developer"`
	Tester     AgentConfig `yaml:"tester" mapstructure:"tester"`
}

// AgentConfig holds settings for one agent role.
type AgentConfig struct {
	// MaxIterations caps tool-loop turns for the role.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// PipelineConfig controls stage execution.
type PipelineConfig struct {
	// StageTimeout bounds each stage. Zero disables the deadline.
	StageTimeout time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`

	// EnforceContracts fails a run when a stage does not produce its artifacts.
	EnforceContracts bool `yaml:"enforce_contracts" mapstructure:"enforce_contracts"`
}

// RoutingConfig controls complexity-based backend selection.
type RoutingConfig struct {
	// Enabled routes roles by brief complexity. When false the default
	// bindings apply (planner on cloud, developer and tester on local).
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// OutputConfig controls where generated projects land.
type OutputConfig struct {
	// BaseDir is the parent of all run directories.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
}

// ServerConfig configures the web dashboard.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// MaxConcurrentRuns bounds in-flight generations.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`

	// RunStoreSize is how many runs are remembered.
	RunStoreSize int `yaml:"run_store_size" mapstructure:"run_store_size"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// ArchiveConfig configures publishing of generated projects.
type ArchiveConfig struct {
	S3 S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures an S3-compatible object store.
type S3Config struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket   string `yaml:"bucket" mapstructure:"bucket"`
	Region   string `yaml:"region" mapstructure:"region"`
	UseSSL   bool   `yaml:"use_ssl" mapstructure:"use_ssl"`

	// AccessKeyEnv and SecretKeyEnv name the environment variables holding credentials.
	AccessKeyEnv string `yaml:"access_key_env" mapstructure:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env" mapstructure:"secret_key_env"`
}

// Credentials returns the access and secret keys from the environment.
func (c S3Config) Credentials() (accessKey, secretKey string) {
	return os.Getenv(c.AccessKeyEnv), os.Getenv(c.SecretKeyEnv)
}

// LogConfig configures the in-memory activity log.
type LogConfig struct {
	// ActivityCapacity is how many activity entries are retained.
	ActivityCapacity int `yaml:"activity_capacity" mapstructure:"activity_capacity"`
}

// MaxIterations returns the iteration cap configured for role.
func (a AgentsConfig) MaxIterations(role string) int {
	switch role {
	case "supervisor":
		return a.Supervisor.MaxIterations
	case "developer":
		return a.Developer.MaxIterations
	case "tester":
		return a.Tester.MaxIterations
	default:
		return 0
	}
}

package config

import (
	"github.com/lunacore/luna/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			Provider:    ProviderOpenAI,
			Model:       constants.DefaultCloudModel,
			APIKeyEnv:   constants.EnvOpenAIKey,
			BaseURL:     constants.DefaultCloudBaseURL,
			Temperature: constants.DefaultCloudTemperature,
			Timeout:     constants.DefaultLLMTimeout,
		},
		Local: LocalConfig{
			Enabled:      true,
			BaseURL:      constants.DefaultLocalBaseURL,
			Model:        constants.DefaultLocalModel,
			Temperature:  constants.DefaultLocalTemperature,
			Timeout:      constants.DefaultLLMTimeout,
			ProbeTimeout: constants.DefaultProbeTimeout,
		},
		Agents: AgentsConfig{
			Supervisor: AgentConfig{MaxIterations: constants.DefaultSupervisorMaxIter},
			Developer:  AgentConfig{MaxIterations: constants.DefaultDeveloperMaxIter},
			Tester:     AgentConfig{MaxIterations: constants.DefaultTesterMaxIter},
		},
		Pipeline: PipelineConfig{
			StageTimeout:     constants.DefaultStageTimeout,
			EnforceContracts: true,
		},
		Routing: RoutingConfig{Enabled: true},
		Output:  OutputConfig{BaseDir: constants.DefaultOutputDir},
		Server: ServerConfig{
			Addr:              constants.DefaultServerAddr,
			MaxConcurrentRuns: constants.DefaultMaxConcurrentRuns,
			RunStoreSize:      constants.DefaultRunStoreSize,
			ShutdownTimeout:   constants.DefaultShutdownTimeout,
		},
		Archive: ArchiveConfig{
			S3: S3Config{
				Region:       "us-east-1",
				UseSSL:       true,
				AccessKeyEnv: "LUNA_S3_ACCESS_KEY",
				SecretKeyEnv: "LUNA_S3_SECRET_KEY",
			},
		},
		Log: LogConfig{ActivityCapacity: constants.DefaultActivityCapacity},
	}
}

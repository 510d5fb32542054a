package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/errors"
)

// LoadDotEnv loads key=value pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = constants.EnvFileName
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "failed to load %s", path)
}

// newViperInstance creates a Viper instance with defaults and LUNA_ env support.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("LUNA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// OLLAMA_BASE_URL is the conventional variable; LUNA_LOCAL_BASE_URL still wins.
	_ = v.BindEnv("local.base_url", "LUNA_LOCAL_BASE_URL", constants.EnvOllamaBaseURL)
	return v
}

func isConfigNotFoundError(err error) bool {
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Missing config files are expected and not an error.
func Load(ctx context.Context) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		globalPath = ""
	}
	return LoadFromPaths(ctx, ProjectConfigPath(), globalPath)
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty or point at a missing file to skip that level.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if err := mergeConfigFile(v, globalConfigPath); err != nil {
		return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
	}
	if err := mergeConfigFile(v, projectConfigPath); err != nil {
		return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("cloud.provider", cfg.Cloud.Provider).
		Str("cloud.model", cfg.Cloud.Model).
		Bool("local.enabled", cfg.Local.Enabled).
		Str("local.base_url", cfg.Local.BaseURL).
		Dur("pipeline.stage_timeout", cfg.Pipeline.StageTimeout).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return err
	}
	return nil
}

// setDefaults mirrors DefaultConfig into viper so env-only keys resolve.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("cloud.provider", d.Cloud.Provider)
	v.SetDefault("cloud.model", d.Cloud.Model)
	v.SetDefault("cloud.api_key_env", d.Cloud.APIKeyEnv)
	v.SetDefault("cloud.base_url", d.Cloud.BaseURL)
	v.SetDefault("cloud.temperature", d.Cloud.Temperature)
	v.SetDefault("cloud.timeout", d.Cloud.Timeout.String())

	v.SetDefault("local.enabled", d.Local.Enabled)
	v.SetDefault("local.base_url", d.Local.BaseURL)
	v.SetDefault("local.model", d.Local.Model)
	v.SetDefault("local.temperature", d.Local.Temperature)
	v.SetDefault("local.timeout", d.Local.Timeout.String())
	v.SetDefault("local.probe_timeout", d.Local.ProbeTimeout.String())

	v.SetDefault("agents.supervisor.max_iterations", d.Agents.Supervisor.MaxIterations)
	v.SetDefault("agents.developer.max_iterations", d.Agents.Developer.MaxIterations)
	v.SetDefault("agents.tester.max_iterations", d.Agents.Tester.MaxIterations)

	v.SetDefault("pipeline.stage_timeout", d.Pipeline.StageTimeout.String())
	v.SetDefault("pipeline.enforce_contracts", d.Pipeline.EnforceContracts)

	v.SetDefault("routing.enabled", d.Routing.Enabled)
	v.SetDefault("output.base_dir", d.Output.BaseDir)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_concurrent_runs", d.Server.MaxConcurrentRuns)
	v.SetDefault("server.run_store_size", d.Server.RunStoreSize)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())

	v.SetDefault("archive.s3.enabled", d.Archive.S3.Enabled)
	v.SetDefault("archive.s3.endpoint", d.Archive.S3.Endpoint)
	v.SetDefault("archive.s3.bucket", d.Archive.S3.Bucket)
	v.SetDefault("archive.s3.region", d.Archive.S3.Region)
	v.SetDefault("archive.s3.use_ssl", d.Archive.S3.UseSSL)
	v.SetDefault("archive.s3.access_key_env", d.Archive.S3.AccessKeyEnv)
	v.SetDefault("archive.s3.secret_key_env", d.Archive.S3.SecretKeyEnv)

	v.SetDefault("log.activity_capacity", d.Log.ActivityCapacity)
}

// viperDecoderOption configures mapstructure to convert duration strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

package config

import (
	"net/url"

	"github.com/lunacore/luna/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
// Credentials are not checked here; backends check them at construction.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	validators := []func(*Config) error{
		validateCloud,
		validateLocal,
		validatePipeline,
		validateServer,
		validateArchive,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateCloud(cfg *Config) error {
	c := cfg.Cloud
	switch c.Provider {
	case ProviderOpenAI:
		if err := validateURL(c.BaseURL); err != nil {
			return errors.Wrapf(errors.ErrConfigInvalidCloud, "cloud.base_url %q: %v", c.BaseURL, err)
		}
	case ProviderGemini:
	default:
		return errors.Wrapf(errors.ErrConfigInvalidCloud,
			"cloud.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Provider)
	}
	if c.Model == "" {
		return errors.Wrap(errors.ErrConfigInvalidCloud, "cloud.model must not be empty")
	}
	if c.APIKeyEnv == "" {
		return errors.Wrap(errors.ErrConfigInvalidCloud, "cloud.api_key_env must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.Wrapf(errors.ErrConfigInvalidCloud,
			"cloud.temperature must be between 0 and 2, got %g", c.Temperature)
	}
	if c.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCloud, "cloud.timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func validateLocal(cfg *Config) error {
	l := cfg.Local
	if !l.Enabled {
		return nil
	}
	if err := validateURL(l.BaseURL); err != nil {
		return errors.Wrapf(errors.ErrConfigInvalidLocal, "local.base_url %q: %v", l.BaseURL, err)
	}
	if l.Model == "" {
		return errors.Wrap(errors.ErrConfigInvalidLocal, "local.model must not be empty")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return errors.Wrapf(errors.ErrConfigInvalidLocal,
			"local.temperature must be between 0 and 2, got %g", l.Temperature)
	}
	if l.Timeout <= 0 || l.ProbeTimeout <= 0 {
		return errors.Wrap(errors.ErrConfigInvalidLocal, "local.timeout and local.probe_timeout must be positive")
	}
	return nil
}

func validatePipeline(cfg *Config) error {
	for _, role := range []string{"supervisor", "developer", "tester"} {
		if n := cfg.Agents.MaxIterations(role); n < 1 || n > 50 {
			return errors.Wrapf(errors.ErrConfigInvalidPipeline,
				"agents.%s.max_iterations must be between 1 and 50, got %d", role, n)
		}
	}
	if cfg.Pipeline.StageTimeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.stage_timeout must not be negative, got %s", cfg.Pipeline.StageTimeout)
	}
	if cfg.Output.BaseDir == "" {
		return errors.Wrap(errors.ErrConfigInvalidPipeline, "output.base_dir must not be empty")
	}
	return nil
}

func validateServer(cfg *Config) error {
	s := cfg.Server
	if s.Addr == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.addr must not be empty")
	}
	if s.MaxConcurrentRuns < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.max_concurrent_runs must be at least 1, got %d", s.MaxConcurrentRuns)
	}
	if s.RunStoreSize < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.run_store_size must be at least 1, got %d", s.RunStoreSize)
	}
	return nil
}

func validateArchive(cfg *Config) error {
	s3 := cfg.Archive.S3
	if !s3.Enabled {
		return nil
	}
	if s3.Endpoint == "" || s3.Bucket == "" {
		return errors.Wrap(errors.ErrConfigInvalidArchive, "archive.s3.endpoint and archive.s3.bucket are required")
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ErrInvalidArgument
	}
	if u.Host == "" {
		return errors.ErrEmptyValue
	}
	return nil
}

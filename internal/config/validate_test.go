package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacore/luna/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"gemini provider", func(c *Config) { c.Cloud.Provider = ProviderGemini; c.Cloud.BaseURL = "" }, nil},
		{"unknown provider", func(c *Config) { c.Cloud.Provider = "anthropic" }, errors.ErrConfigInvalidCloud},
		{"bad cloud url", func(c *Config) { c.Cloud.BaseURL = "ftp://x" }, errors.ErrConfigInvalidCloud},
		{"empty cloud model", func(c *Config) { c.Cloud.Model = "" }, errors.ErrConfigInvalidCloud},
		{"cloud temperature", func(c *Config) { c.Cloud.Temperature = 3 }, errors.ErrConfigInvalidCloud},
		{"zero cloud timeout", func(c *Config) { c.Cloud.Timeout = 0 }, errors.ErrConfigInvalidCloud},
		{"bad local url", func(c *Config) { c.Local.BaseURL = "localhost" }, errors.ErrConfigInvalidLocal},
		{"local disabled ignores url", func(c *Config) { c.Local.Enabled = false; c.Local.BaseURL = "" }, nil},
		{"iteration cap", func(c *Config) { c.Agents.Tester.MaxIterations = 0 }, errors.ErrConfigInvalidPipeline},
		{"negative stage timeout", func(c *Config) { c.Pipeline.StageTimeout = -time.Second }, errors.ErrConfigInvalidPipeline},
		{"empty output dir", func(c *Config) { c.Output.BaseDir = "" }, errors.ErrConfigInvalidPipeline},
		{"zero concurrency", func(c *Config) { c.Server.MaxConcurrentRuns = 0 }, errors.ErrConfigInvalidServer},
		{"s3 without bucket", func(c *Config) { c.Archive.S3.Enabled = true; c.Archive.S3.Endpoint = "minio:9000" }, errors.ErrConfigInvalidArchive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
}

package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
)

// Backends is the pair of backends roles can be bound to. When the local
// backend is unavailable Local is the cloud backend.
type Backends struct {
	Cloud          Backend
	Local          Backend
	LocalAvailable bool
	// LocalModel is the configured local model even when unavailable.
	LocalModel string
	// LocalError explains why the local backend is unavailable.
	LocalError string
}

// For returns the backend for kind.
func (b Backends) For(kind domain.BackendKind) Backend {
	if kind == domain.BackendLocal {
		return b.Local
	}
	return b.Cloud
}

// Info summarizes the backends for health reports.
func (b Backends) Info() domain.BackendInfo {
	info := domain.BackendInfo{LocalModel: b.LocalModel, LocalAvailable: b.LocalAvailable}
	if b.Cloud != nil {
		info.CloudModel = b.Cloud.Model()
	}
	return info
}

// NewCloudBackend builds the configured cloud adapter. Missing or placeholder
// credentials fail here, before any run starts.
func NewCloudBackend(ctx context.Context, cfg config.CloudConfig) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIBackend(cfg)
	case config.ProviderGemini:
		return NewGeminiBackend(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownProvider, cfg.Provider)
	}
}

// Resolve decides the backend set from the probe outcome. local may be nil
// when the local backend is disabled. It performs no I/O.
func Resolve(cloud, local Backend, probeErr error, logger zerolog.Logger) Backends {
	b := Backends{Cloud: cloud, Local: cloud}
	if local != nil {
		b.LocalModel = local.Model()
	}

	switch {
	case local == nil:
		b.LocalError = "local backend disabled"
	case probeErr != nil:
		b.LocalError = probeErr.Error()
	default:
		b.Local = local
		b.LocalAvailable = true
		return b
	}

	llmLogger := logging.WithCategory(logger, logging.CategoryLLM)
	llmLogger.Warn().
		Str("cloud", cloud.Name()).
		Str("reason", b.LocalError).
		Msg("local model unavailable, all agents use the cloud model")
	return b
}

// Select builds the cloud backend, probes the local one, and resolves the set.
func Select(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Backends, error) {
	cloud, err := NewCloudBackend(ctx, cfg.Cloud)
	if err != nil {
		return Backends{}, err
	}

	if !cfg.Local.Enabled {
		return Resolve(cloud, nil, nil, logger), nil
	}

	local := NewOllamaBackend(cfg.Local)
	probeCtx, cancel := context.WithTimeout(ctx, cfg.Local.ProbeTimeout)
	defer cancel()
	return Resolve(cloud, local, local.Probe(probeCtx), logger), nil
}

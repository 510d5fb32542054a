// Package crew wires backends, agents, tools and the pipeline into a single
// generation call.
//
// Every GenerateProject call builds its own RunContext: its own run
// directory, backend bindings, agents and toolbox. Nothing per-run is stored
// on the Orchestrator, so concurrent calls do not interfere.
//
// Import rules:
//   - CAN import: internal/pipeline, internal/agent, internal/tools, internal/llm,
//     internal/router, internal/workspace, internal/archive, internal/config,
//     internal/domain, internal/errors, internal/logging, internal/metrics,
//     internal/safe
//   - MUST NOT import: internal/web, internal/cli, internal/tui
package crew

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/agent"
	"github.com/lunacore/luna/internal/archive"
	"github.com/lunacore/luna/internal/clock"
	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/llm"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/metrics"
	"github.com/lunacore/luna/internal/pipeline"
	"github.com/lunacore/luna/internal/router"
	"github.com/lunacore/luna/internal/safe"
	"github.com/lunacore/luna/internal/workspace"
)

// Request is one generation request.
type Request struct {
	// Brief is the free-text project description. Required.
	Brief string
	// Template is a template tag; empty means cli.
	Template string
	// ProjectName overrides the name derived from the brief.
	ProjectName string
	// RunID identifies the run. A UUID is generated when empty.
	RunID string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder shared by every run.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithClock sets the clock used for run directories and timings.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithPublisher publishes every successful run's archive.
func WithPublisher(p archive.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

// WithIDGenerator replaces the UUID run ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		o.newID = fn
	}
}

// Orchestrator owns the immutable parts of the system: configuration,
// backends, agent definitions, the router and the pipeline.
type Orchestrator struct {
	outputDir string
	backends  llm.Backends
	defs      []agent.Definition
	router    *router.Router
	pipeline  *pipeline.Pipeline
	recorder  metrics.Recorder
	clock     clock.Clock
	publisher archive.Publisher
	newID     func() string
	logger    zerolog.Logger
}

// New creates an orchestrator over already selected backends.
func New(cfg *config.Config, backends llm.Backends, logger zerolog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.ErrConfigNil
	}
	if backends.Cloud == nil {
		return nil, fmt.Errorf("%w: no cloud backend", errors.ErrBackendUnavailable)
	}
	if backends.Local == nil {
		backends.Local = backends.Cloud
	}

	o := &Orchestrator{
		outputDir: cfg.Output.BaseDir,
		backends:  backends,
		defs:      agent.Definitions(cfg.Agents),
		router:    router.New(cfg.Routing, logger),
		recorder:  metrics.NoopRecorder{},
		clock:     clock.RealClock{},
		newID:     uuid.NewString,
		logger:    logging.WithCategory(logger, logging.CategoryCrew),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.outputDir == "" {
		o.outputDir = constants.DefaultOutputDir
	}
	o.pipeline = pipeline.New(pipeline.ConfigFrom(cfg.Pipeline), logger,
		pipeline.WithRecorder(o.recorder), pipeline.WithClock(o.clock))
	return o, nil
}

// FromConfig selects backends and, when enabled, the archive publisher, then
// creates the orchestrator. Missing credentials fail here.
func FromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.ErrConfigNil
	}
	backends, err := llm.Select(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Archive.S3.Enabled {
		pub, err := archive.NewS3Publisher(cfg.Archive.S3)
		if err != nil {
			return nil, err
		}
		access, _ := cfg.Archive.S3.Credentials()
		logger.Debug().
			Str("endpoint", cfg.Archive.S3.Endpoint).
			Str("bucket", cfg.Archive.S3.Bucket).
			Str("access_key", logging.SafeValue("access_key", access)).
			Msg("archive publishing enabled")
		opts = append([]Option{WithPublisher(pub)}, opts...)
	}
	return New(cfg, backends, logger, opts...)
}

// Backends returns the backend set the orchestrator binds roles to.
func (o *Orchestrator) Backends() llm.Backends {
	return o.backends
}

// Definitions returns the agent definitions in pipeline order.
func (o *Orchestrator) Definitions() []agent.Definition {
	out := make([]agent.Definition, len(o.defs))
	copy(out, o.defs)
	return out
}

// Route classifies brief without running anything.
func (o *Orchestrator) Route(brief string) domain.RoutingDecision {
	return o.router.Decide(brief, o.backends.LocalAvailable)
}

// Validate checks a request without side effects and returns the parsed
// template.
func Validate(req Request) (domain.Template, error) {
	if strings.TrimSpace(req.Brief) == "" {
		return "", errors.ErrEmptyBrief
	}
	return domain.ParseTemplate(req.Template)
}

// GenerateProject runs the full pipeline for req.
//
// An invalid request returns ErrEmptyBrief or ErrUnknownTemplate and a nil
// Result, before anything is written. Once the run has started the Result is
// always returned: on failure it has status error and the error is also
// returned.
func (o *Orchestrator) GenerateProject(ctx context.Context, req Request) (*domain.Result, error) {
	tmpl, err := Validate(req)
	if err != nil {
		return nil, err
	}

	start := o.clock.Now()
	o.recorder.RunStarted(tmpl.String())

	rc, err := o.prepare(req, tmpl)
	if err != nil {
		return o.failed(rc, start, err), err
	}
	logger := rc.Logger
	ctx = logger.WithContext(ctx)

	logger.Info().
		Str("template", tmpl.String()).
		Str("project", rc.ProjectName).
		Str("dir", rc.Workspace.Root).
		Msgf("Generating %s project %q", tmpl.DisplayName(), rc.ProjectName)

	outcome, runErr := o.pipeline.Execute(ctx, rc.pipelineInput())

	files, scanErr := rc.Workspace.Scan()
	if scanErr != nil {
		logger.Warn().Err(scanErr).Msg("could not scan run directory")
	}

	result := rc.result()
	result.Files = files
	if outcome != nil {
		result.Stages = outcome.Stages
		result.Output = outcome.Output
	}

	if runErr != nil {
		duration := clock.Since(o.clock, start)
		result.Status = domain.RunError
		result.Error = runErr.Error()
		result.ExecutionTime = domain.Seconds(duration)
		o.recorder.RunFinished(string(domain.RunError), duration)
		logger.Error().Err(runErr).Int64("duration_ms", duration.Milliseconds()).Msg("Generation failed")
		return result, runErr
	}

	if o.publisher != nil {
		result.ArchiveURL = o.publish(ctx, rc, files)
	}

	duration := clock.Since(o.clock, start)
	result.Status = domain.RunSuccess
	result.ExecutionTime = domain.Seconds(duration)
	o.recorder.RunFinished(string(domain.RunSuccess), duration)
	logging.Success(logger.Info()).
		Int("files", len(files)).
		Int64("duration_ms", duration.Milliseconds()).
		Msgf("Project %q generated: %d files in %.2fs", rc.ProjectName, len(files), result.ExecutionTime)
	return result, nil
}

// failed builds the error result for a run that could not be prepared.
func (o *Orchestrator) failed(rc *RunContext, start time.Time, err error) *domain.Result {
	duration := clock.Since(o.clock, start)
	o.recorder.RunFinished(string(domain.RunError), duration)
	rc.Logger.Error().Err(err).Msg("Generation could not start")

	result := rc.result()
	result.Status = domain.RunError
	result.Error = err.Error()
	result.ExecutionTime = domain.Seconds(duration)
	return result
}

// publish uploads the run's archive and returns its URL, or "" when building
// or uploading failed. Failures are logged and never fail the run.
func (o *Orchestrator) publish(ctx context.Context, rc *RunContext, files map[string]string) string {
	logger := logging.WithCategory(rc.Logger, logging.CategoryArchive)
	url := safe.Call(logger, "publish archive", "", func() (string, error) {
		data, err := archive.BuildZip(files)
		if err != nil {
			return "", err
		}
		return o.publisher.Publish(ctx, rc.ID, rc.ProjectName, data)
	})
	if url != "" {
		logger.Info().Str("key", archive.ObjectKey(rc.ID, rc.ProjectName)).Msg("Project archive published")
	}
	return url
}

// projectName picks the override when given, otherwise derives it from brief.
func projectName(req Request) string {
	if strings.TrimSpace(req.ProjectName) != "" {
		return workspace.SanitizeName(req.ProjectName)
	}
	return workspace.ProjectName(req.Brief)
}

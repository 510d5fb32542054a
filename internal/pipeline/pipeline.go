// Package pipeline runs the three generation stages in order: planning,
// implementing, testing. Each stage's output is threaded into the context of
// the stages after it, and each stage must leave its artifacts behind.
//
// Import rules:
//   - CAN import: internal/agent, internal/tools, internal/workspace, internal/prompts,
//     internal/domain, internal/errors, internal/logging, internal/metrics, internal/safe
//   - MUST NOT import: internal/crew, internal/web, internal/cli
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/agent"
	"github.com/lunacore/luna/internal/clock"
	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/metrics"
	"github.com/lunacore/luna/internal/safe"
	"github.com/lunacore/luna/internal/tools"
	"github.com/lunacore/luna/internal/workspace"
)

// Config holds stage execution settings.
type Config struct {
	// StageTimeout bounds each stage. Zero disables the deadline.
	StageTimeout time.Duration

	// EnforceContracts fails the run when a stage leaves no artifacts.
	EnforceContracts bool
}

// ConfigFrom converts the loaded configuration.
func ConfigFrom(cfg config.PipelineConfig) Config {
	return Config{StageTimeout: cfg.StageTimeout, EnforceContracts: cfg.EnforceContracts}
}

// Input is everything one run of the pipeline needs. It is owned by a single
// generation call.
type Input struct {
	Brief       string
	Template    domain.Template
	ProjectName string
	Workspace   *workspace.Run
	Agents      map[domain.Role]*agent.Agent
	Toolbox     *tools.Toolbox
}

// Outcome is what the pipeline produced.
type Outcome struct {
	// Output is the last stage's answer.
	Output string
	Stages []domain.StageReport
	Plan   *Plan
	// Reached is the last stage entered, StageDone on success.
	Reached domain.Stage
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithClock sets the clock used for stage durations.
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// Pipeline executes stages sequentially. It holds no per-run state and is
// safe to share between concurrent runs.
type Pipeline struct {
	cfg      Config
	stages   []stage
	recorder metrics.Recorder
	clock    clock.Clock
	logger   zerolog.Logger
}

// New creates a pipeline.
func New(cfg Config, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		stages:   stages(),
		recorder: metrics.NoopRecorder{},
		clock:    clock.RealClock{},
		logger:   logging.WithCategory(logger, logging.CategoryPipeline),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TaskCount returns the number of stages a run executes.
func (p *Pipeline) TaskCount() int {
	return len(p.stages)
}

// state is the per-run scratch space threaded through the stages.
type state struct {
	in       Input
	outputs  map[domain.Stage]string
	plan     *Plan
	planText string
}

func (st *state) contextFor(stages ...domain.Stage) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		if text, ok := st.outputs[s]; ok {
			out = append(out, text)
		}
	}
	return out
}

// Execute runs every stage in order. The first error aborts the run; the
// returned Outcome still carries the reports of the stages that ran.
func (p *Pipeline) Execute(ctx context.Context, in Input) (*Outcome, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	st := &state{in: in, outputs: make(map[domain.Stage]string, len(p.stages))}
	outcome := &Outcome{Reached: domain.StagePlanning}

	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		outcome.Reached = s.name

		report, out, err := p.runStage(ctx, s, st)
		outcome.Stages = append(outcome.Stages, report)
		if err != nil {
			return outcome, errors.Wrapf(err, "%s stage", s.name)
		}

		st.outputs[s.name] = out.Text
		outcome.Output = out.Text
		if next, ok := Next(s.name); ok {
			outcome.Reached = next
		}
	}

	outcome.Plan = st.plan
	return outcome, nil
}

func (p *Pipeline) runStage(ctx context.Context, s stage, st *state) (domain.StageReport, agent.Output, error) {
	ag := st.in.Agents[s.role]
	report := domain.StageReport{
		Stage:   s.name,
		Role:    s.role,
		Backend: ag.Backend().Kind(),
		Status:  domain.RunRunning,
	}

	start := p.clock.Now()
	p.logger.Info().
		Str("stage", string(s.name)).
		Str("backend", ag.Backend().Name()).
		Msgf("%s stage started (%s on %s)", s.name, s.role, report.Backend)

	var out agent.Output
	err := safe.WithTimeout(ctx, p.cfg.StageTimeout, fmt.Sprintf("%s stage", s.name), func(ctx context.Context) error {
		description, err := s.describe(st)
		if err != nil {
			return err
		}
		out, err = ag.Execute(ctx, agent.Task{
			Description:    description,
			ExpectedOutput: s.expected,
			Context:        s.context(st),
		})
		return err
	})

	if err == nil {
		if checkErr := s.check(ctx, p, st, out); checkErr != nil {
			if p.cfg.EnforceContracts {
				err = checkErr
			} else {
				p.logger.Warn().Err(checkErr).Str("stage", string(s.name)).Msg("stage contract not met")
			}
		}
	}

	duration := clock.Since(p.clock, start)
	report.Duration = domain.Seconds(duration)
	report.Iterations = out.Iterations
	report.ToolCalls = out.ToolCalls
	report.FilesWritten = st.in.Toolbox.WrittenFiles(s.role)
	p.recorder.StageFinished(string(s.name), s.role.String(), duration, err == nil)

	if err != nil {
		report.Status = domain.RunError
		report.Error = err.Error()
		p.logger.Error().
			Err(err).
			Str("stage", string(s.name)).
			Int64("duration_ms", duration.Milliseconds()).
			Msgf("%s stage failed", s.name)
		return report, out, err
	}

	report.Status = domain.RunSuccess
	logging.Success(p.logger.Info()).
		Str("stage", string(s.name)).
		Int64("duration_ms", duration.Milliseconds()).
		Msgf("%s stage completed: %d files, %d tool calls", s.name, len(report.FilesWritten), out.ToolCalls)
	return report, out, nil
}

func validateInput(in Input) error {
	var missing []string
	if in.Workspace == nil {
		missing = append(missing, "workspace")
	}
	if in.Toolbox == nil {
		missing = append(missing, "toolbox")
	}
	for _, role := range domain.Roles() {
		if in.Agents[role] == nil {
			missing = append(missing, role.String()+" agent")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: pipeline input is missing %s", errors.ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return nil
}

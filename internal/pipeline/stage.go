package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunacore/luna/internal/agent"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/prompts"
	"github.com/lunacore/luna/internal/workspace"
)

// ValidTransitions is the stage state machine:
//
//	Planning → Implementing → Testing → Done
//
//nolint:gochecknoglobals // Read-only lookup table
var ValidTransitions = map[domain.Stage]domain.Stage{
	domain.StagePlanning:     domain.StageImplementing,
	domain.StageImplementing: domain.StageTesting,
	domain.StageTesting:      domain.StageDone,
}

// Next returns the stage that follows s.
func Next(s domain.Stage) (domain.Stage, bool) {
	n, ok := ValidTransitions[s]
	return n, ok
}

// stage declares one step: who runs it, what it is told, what it sees from
// earlier stages, and what it must leave behind.
type stage struct {
	name     domain.Stage
	role     domain.Role
	expected string
	describe func(st *state) (string, error)
	context  func(st *state) []string
	check    func(ctx context.Context, p *Pipeline, st *state, out agent.Output) error
}

func stages() []stage {
	return []stage{
		{
			name:     domain.StagePlanning,
			role:     domain.RoleSupervisor,
			expected: "A detailed architecture plan written to " + constants.PlanFileName,
			describe: func(st *state) (string, error) {
				return prompts.Render(prompts.StagePlanning, prompts.PlanningData{
					Brief:               st.in.Brief,
					Template:            st.in.Template.String(),
					TemplateDescription: st.in.Template.Description(),
					ProjectName:         st.in.ProjectName,
					PlanFile:            constants.PlanFileName,
				})
			},
			context: func(*state) []string { return nil },
			check:   checkPlan,
		},
		{
			name:     domain.StageImplementing,
			role:     domain.RoleDeveloper,
			expected: "Every code file of the plan written to the project",
			describe: func(st *state) (string, error) {
				return prompts.Render(prompts.StageImplementing, prompts.ImplementingData{
					Template: st.in.Template.String(),
					PlanFile: constants.PlanFileName,
					Plan:     st.planText,
					Modules:  st.plan.ModulePaths(),
				})
			},
			context: func(st *state) []string {
				return st.contextFor(domain.StagePlanning)
			},
			check: checkImplementation,
		},
		{
			name:     domain.StageTesting,
			role:     domain.RoleTester,
			expected: "A pytest suite and a smoke test script written to the project",
			describe: func(st *state) (string, error) {
				return prompts.Render(prompts.StageTesting, prompts.TestingData{
					Template: st.in.Template.String(),
					Files:    implementationFiles(st.in.Toolbox.WrittenFiles(domain.RoleDeveloper)),
				})
			},
			context: func(st *state) []string {
				return st.contextFor(domain.StagePlanning, domain.StageImplementing)
			},
			check: checkTests,
		},
	}
}

// checkPlan requires a schema-valid plan.json. A missing or invalid file is
// replaced by the final answer when that answer is itself a valid plan.
func checkPlan(_ context.Context, p *Pipeline, st *state, out agent.Output) error {
	ws := st.in.Workspace

	var fileErr error
	if text, err := ws.ReadFile(constants.PlanFileName); err == nil {
		st.planText = text
		plan, verr := ValidatePlan([]byte(text))
		if verr == nil {
			st.plan = plan
			return nil
		}
		fileErr = verr
	} else {
		fileErr = fmt.Errorf("%w: %s was not written", errors.ErrContractViolation, constants.PlanFileName)
	}

	raw, ok := ExtractPlan(out.Text)
	if !ok {
		return fileErr
	}
	plan, err := ValidatePlan(raw)
	if err != nil {
		return fileErr
	}

	formatted := FormatPlan(raw)
	if _, err := ws.WriteFile(constants.PlanFileName, string(formatted)); err != nil {
		return errors.Wrapf(err, "materialize %s", constants.PlanFileName)
	}
	st.plan = plan
	st.planText = string(formatted)
	p.logger.Info().Msgf("%s materialized from the planner's answer", constants.PlanFileName)
	return nil
}

func checkImplementation(_ context.Context, _ *Pipeline, st *state, _ agent.Output) error {
	for _, f := range implementationFiles(st.in.Toolbox.WrittenFiles(domain.RoleDeveloper)) {
		if st.in.Workspace.Exists(f) {
			return nil
		}
	}
	return fmt.Errorf("%w: the developer wrote no implementation files", errors.ErrContractViolation)
}

func checkTests(_ context.Context, _ *Pipeline, st *state, _ agent.Output) error {
	for _, f := range st.in.Toolbox.WrittenFiles(domain.RoleTester) {
		if workspace.IsTestFile(f) {
			return nil
		}
	}
	return fmt.Errorf("%w: the tester wrote no test files", errors.ErrContractViolation)
}

// implementationFiles drops tests and pipeline artifacts from paths.
func implementationFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if isArtifact(p) || workspace.IsTestFile(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isArtifact(p string) bool {
	return strings.EqualFold(p, constants.PlanFileName) || strings.EqualFold(p, constants.RoutingFileName)
}

package crew

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/lunacore/luna/internal/agent"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/llm"
	"github.com/lunacore/luna/internal/pipeline"
	"github.com/lunacore/luna/internal/tools"
	"github.com/lunacore/luna/internal/workspace"
)

// RunContext is everything one generation call owns. It is created by
// GenerateProject and never shared.
type RunContext struct {
	ID          string
	Brief       string
	Template    domain.Template
	ProjectName string
	Workspace   *workspace.Run
	Routing     domain.RoutingDecision
	Bindings    map[domain.Role]llm.Backend
	Agents      map[domain.Role]*agent.Agent
	Toolbox     *tools.Toolbox
	Logger      zerolog.Logger

	agentsCount int
	tasksCount  int
}

// prepare creates the run directory, routes the brief, binds backends and
// builds the run's agents. On error the returned RunContext may be partially
// filled.
func (o *Orchestrator) prepare(req Request, tmpl domain.Template) (*RunContext, error) {
	id := req.RunID
	if id == "" {
		id = o.newID()
	}
	rc := &RunContext{
		ID:          id,
		Brief:       req.Brief,
		Template:    tmpl,
		ProjectName: projectName(req),
		Logger:      o.logger.With().Str("run_id", id).Logger(),
		agentsCount: len(o.defs),
		tasksCount:  o.pipeline.TaskCount(),
	}

	ws, err := workspace.Create(o.outputDir, rc.ProjectName, o.clock)
	if err != nil {
		return rc, err
	}
	rc.Workspace = ws

	rc.Routing = o.router.Decide(req.Brief, o.backends.LocalAvailable)
	if err := writeRouting(ws, rc.Routing); err != nil {
		return rc, err
	}

	rc.Bindings = make(map[domain.Role]llm.Backend, len(o.defs))
	for _, def := range o.defs {
		backend := o.backends.For(rc.Routing.BackendFor(def.Role))
		rc.Bindings[def.Role] = llm.NewInstrumented(backend, def.Role, o.recorder, rc.Logger)
	}

	rc.Toolbox = tools.NewToolbox(o.recorder, rc.Logger,
		tools.NewWriteFile(ws),
		tools.NewValidatePython(),
		tools.NewAskSupervisor(rc.Bindings[domain.RoleSupervisor]),
	)

	rc.Agents = make(map[domain.Role]*agent.Agent, len(o.defs))
	for _, def := range o.defs {
		rc.Agents[def.Role] = agent.New(def, rc.Bindings[def.Role], rc.Toolbox.For(def.Role, def.Tools), rc.Logger)
	}
	return rc, nil
}

func writeRouting(ws *workspace.Run, d domain.RoutingDecision) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode routing decision")
	}
	if _, err := ws.WriteFile(constants.RoutingFileName, string(data)+"\n"); err != nil {
		return errors.Wrapf(err, "write %s", constants.RoutingFileName)
	}
	return nil
}

func (rc *RunContext) pipelineInput() pipeline.Input {
	return pipeline.Input{
		Brief:       rc.Brief,
		Template:    rc.Template,
		ProjectName: rc.ProjectName,
		Workspace:   rc.Workspace,
		Agents:      rc.Agents,
		Toolbox:     rc.Toolbox,
	}
}

// result starts the run's Result with everything known before execution.
func (rc *RunContext) result() *domain.Result {
	r := &domain.Result{
		RunID:       rc.ID,
		ProjectName: rc.ProjectName,
		Template:    rc.Template,
		AgentsCount: rc.agentsCount,
		TasksCount:  rc.tasksCount,
	}
	if rc.Workspace != nil {
		r.OutputDirectory = rc.Workspace.Root
		routing := rc.Routing
		r.Routing = &routing
	}
	return r
}

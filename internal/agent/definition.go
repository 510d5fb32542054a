// Package agent defines the three fixed agents and runs their tool loop.
package agent

import (
	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/constants"
	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/tools"
)

// Definition is an agent's fixed identity. Definitions are created once and
// never mutated; per-run state lives in Agent.
type Definition struct {
	Role           domain.Role
	Title          string
	Goal           string
	Backstory      string
	Tools          []string
	MaxIterations  int
	AllowDelegate  bool
	DefaultBackend domain.BackendKind
}

// Definitions returns the supervisor, developer and tester in pipeline order,
// with iteration caps taken from cfg.
func Definitions(cfg config.AgentsConfig) []Definition {
	return []Definition{
		{
			Role:  domain.RoleSupervisor,
			Title: "Architect & Senior Supervisor",
			Goal:  "Design the project architecture and guide the developers",
			Backstory: "You are a senior software architect with 15+ years of experience. " +
				"You DO NOT write code: you design, plan and guide the other agents. " +
				"You step in to unblock complex situations.",
			Tools:          []string{tools.NameWriteFile},
			MaxIterations:  maxIter(cfg, domain.RoleSupervisor, constants.DefaultSupervisorMaxIter),
			DefaultBackend: domain.BackendCloud,
		},
		{
			Role:  domain.RoleDeveloper,
			Title: "Principal Full-Stack Developer",
			Goal:  "Implement the project's code from A to Z",
			Backstory: "You are an expert developer fluent in Python, FastAPI, Streamlit and Flask. " +
				"You write clean, working, well structured code and create the main files " +
				"(main.py, app.py, modules, requirements.txt, README.md).",
			Tools:          []string{tools.NameWriteFile, tools.NameValidatePython, tools.NameAskSupervisor},
			MaxIterations:  maxIter(cfg, domain.RoleDeveloper, constants.DefaultDeveloperMaxIter),
			DefaultBackend: domain.BackendLocal,
		},
		{
			Role:  domain.RoleTester,
			Title: "QA & Test Engineer",
			Goal:  "Create a complete and robust test suite",
			Backstory: "You are an expert in automated testing with pytest. " +
				"You write unit, integration and functional tests and make sure the code is reliable.",
			Tools:          []string{tools.NameWriteFile, tools.NameValidatePython},
			MaxIterations:  maxIter(cfg, domain.RoleTester, constants.DefaultTesterMaxIter),
			DefaultBackend: domain.BackendLocal,
		},
	}
}

func maxIter(cfg config.AgentsConfig, role domain.Role, fallback int) int {
	if n := cfg.MaxIterations(role.String()); n > 0 {
		return n
	}
	return fallback
}

package prompts

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers for all agent prompts.
const (
	// Agent conversation prompts
	AgentSystem      PromptID = "agent/system"
	AgentTask        PromptID = "agent/task"
	AgentToolResults PromptID = "agent/tool_results"

	// Pipeline stage descriptions
	StagePlanning     PromptID = "pipeline/planning"
	StageImplementing PromptID = "pipeline/implementing"
	StageTesting      PromptID = "pipeline/testing"

	// Tool prompts
	SupervisorAdvice PromptID = "tools/ask_supervisor"
)

// ToolInfo is a tool as listed in the system prompt.
type ToolInfo struct {
	Name        string
	Description string
	Params      []ParamInfo
}

// ParamInfo is one tool parameter.
type ParamInfo struct {
	Name        string
	Description string
}

// AgentSystemData contains the persona and tool list of an agent.
type AgentSystemData struct {
	// Title is the agent's role title, e.g. "Architect & Senior Supervisor".
	Title string
	// Goal is what the agent is trying to achieve.
	Goal string
	// Backstory shapes the agent's behavior.
	Backstory string
	// Tools lists the tools the agent may call. Empty means answer directly.
	Tools []ToolInfo
}

// AgentTaskData contains one task handed to an agent.
type AgentTaskData struct {
	Description    string
	ExpectedOutput string
	// Context holds the outputs of earlier tasks.
	Context []string
}

// ToolResultData carries the results of one round of tool calls.
type ToolResultData struct {
	Results   []ToolResultLine
	Remaining int
}

// ToolResultLine is one tool call outcome.
type ToolResultLine struct {
	Tool    string
	Message string
}

// PlanningData feeds the planning stage description.
type PlanningData struct {
	Brief               string
	Template            string
	TemplateDescription string
	ProjectName         string
	PlanFile            string
}

// ImplementingData feeds the implementing stage description.
type ImplementingData struct {
	Template string
	PlanFile string
	// Plan is the plan artifact text, empty if unavailable.
	Plan string
	// Modules are the file paths the plan lists.
	Modules []string
}

// TestingData feeds the testing stage description.
type TestingData struct {
	Template string
	// Files are the implementation files written so far.
	Files []string
}

// SupervisorAdviceData feeds the ask_supervisor request.
type SupervisorAdviceData struct {
	Problem string
	Context string
}

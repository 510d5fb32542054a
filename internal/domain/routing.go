package domain

// Complexity is the router's estimate of how demanding a brief is.
type Complexity string

// Complexity levels.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// RoutingDecision records which backend each role is bound to for one run.
// It is written to routing.json in the run directory.
type RoutingDecision struct {
	Complexity     Complexity           `json:"complexity"`
	Score          int                  `json:"score"`
	Assignments    map[Role]BackendKind `json:"assignments"`
	Reason         string               `json:"reason"`
	LocalAvailable bool                 `json:"local_available"`
	Signals        []string             `json:"signals,omitempty"`
}

// BackendFor returns the backend assigned to role, defaulting to cloud.
func (d RoutingDecision) BackendFor(role Role) BackendKind {
	if k, ok := d.Assignments[role]; ok {
		return k
	}
	return BackendCloud
}

// DefaultAssignments is the binding used when routing is disabled: planner
// on cloud, developer and tester on local.
func DefaultAssignments() map[Role]BackendKind {
	return map[Role]BackendKind{
		RoleSupervisor: BackendCloud,
		RoleDeveloper:  BackendLocal,
		RoleTester:     BackendLocal,
	}
}

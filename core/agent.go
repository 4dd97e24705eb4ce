package core

// Agent is the unit of work in the pipeline. Each agent receives the shared
// RunContext, reads the state written by its predecessors, performs its stage
// and stages its own result via SetState.
//
// Implementations must:
//   - Respect context cancellation via the RunContext
//   - Record stage-level failures inside their stage result rather than
//     returning an error; a returned error aborts the whole run
//   - Emit events through the RunContext for externally visible progress
type Agent interface {
	Name() string
	Description() string
	Run(rc *RunContext) error
}

// AgentInfo carries identifying details about an agent used in contexts and
// events. Name is the external identifier; Type categorizes the stage
// (e.g. "decomposer", "retrieval", "consolidator").
type AgentInfo struct{ Name, Type string }

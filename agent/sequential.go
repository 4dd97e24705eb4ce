package agent

import (
	"fmt"
	"time"

	"github.com/hupe1980/pharmamesh/core"
)

// SequentialAgent coordinates the execution of multiple child agents in
// order, passing the accumulated session state between them. Each stage's
// output becomes available to subsequent stages through the shared
// RunContext.
//
// A child returning an error stops further processing; stages signal
// domain-level degradation through their stage results instead, which lets
// the rest of the pipeline continue.
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a new sequential execution coordinator. The
// child agents run in the order they are specified.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	return &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
}

// Children returns the configured child agents in execution order.
func (s *SequentialAgent) Children() []core.Agent {
	out := make([]core.Agent, len(s.children))
	copy(out, s.children)
	return out
}

// Run implements core.Agent. It executes each child agent in order, checking
// for cancellation between stages.
func (s *SequentialAgent) Run(rc *core.RunContext) error {
	for _, child := range s.children {
		if err := rc.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := child.Run(rc); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}

		rc.Logger.Debug("Stage finished", "agent", child.Name(), "duration", time.Since(start).String())
	}

	return nil
}

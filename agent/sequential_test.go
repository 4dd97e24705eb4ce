package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent records its invocation and optionally fails.
type stubAgent struct {
	BaseAgent
	calls *[]string
	err   error
}

func newStubAgent(name string, calls *[]string, err error) *stubAgent {
	return &stubAgent{BaseAgent: NewBaseAgent(name), calls: calls, err: err}
}

func (s *stubAgent) Run(_ *core.RunContext) error {
	*s.calls = append(*s.calls, s.Name())
	return s.err
}

func TestSequentialAgentRunsChildrenInOrder(t *testing.T) {
	var calls []string

	seq := NewSequentialAgent("pipeline",
		newStubAgent("first", &calls, nil),
		newStubAgent("second", &calls, nil),
		newStubAgent("third", &calls, nil),
	)

	rc, _ := newTestRunContext(t, "query")
	require.NoError(t, seq.Run(rc))

	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Len(t, seq.Children(), 3)
}

func TestSequentialAgentStopsOnError(t *testing.T) {
	var calls []string

	seq := NewSequentialAgent("pipeline",
		newStubAgent("first", &calls, nil),
		newStubAgent("second", &calls, errors.New("boom")),
		newStubAgent("third", &calls, nil),
	)

	rc, _ := newTestRunContext(t, "query")
	err := seq.Run(rc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequential execution failed at agent second")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSequentialAgentHonorsCancellation(t *testing.T) {
	var calls []string

	seq := NewSequentialAgent("pipeline", newStubAgent("first", &calls, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := core.NewRunContext(ctx, "s", "r", core.AgentInfo{}, "q", 0, make(chan core.Event, 1), core.NewSession("s"), nil, nil, nil)

	err := seq.Run(rc)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/logging"
	"github.com/stretchr/testify/require"
)

// newTestRunContext builds a RunContext with a buffered event channel and an
// in-memory session, sufficient for exercising single stages.
func newTestRunContext(t *testing.T, query string) (*core.RunContext, chan core.Event) {
	t.Helper()

	events := make(chan core.Event, 32)
	sess := core.NewSession("sess-test")

	rc := core.NewRunContext(
		context.Background(),
		"sess-test",
		"run-test",
		core.AgentInfo{Name: "test"},
		query,
		0,
		events,
		sess,
		nil,
		nil,
		logging.NoOpLogger{},
	)

	return rc, events
}

// nextEvent pops one emitted event or fails the test.
func nextEvent(t *testing.T, events chan core.Event) core.Event {
	t.Helper()

	select {
	case ev := <-events:
		return ev
	default:
		require.FailNow(t, "expected an emitted event")
		return core.Event{}
	}
}

package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/pharmamesh/artifact"
	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/logging"
	"github.com/hupe1980/pharmamesh/session"
)

// FinalSummaryArtifactID is the artifact id the consolidated summary is
// stored under after each completed run.
const FinalSummaryArtifactID = "final_summary.txt"

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// EventBufferSize sets channel buffering for emitted events.
	EventBufferSize int

	// MaxModelCalls caps model invocations per run. Zero means unlimited.
	MaxModelCalls int

	// SessionStore persists session state and event history.
	SessionStore core.SessionStore

	// ArtifactStore persists rendered run outputs.
	ArtifactStore core.ArtifactStore

	// Logger is the logger used by the runner.
	Logger logging.Logger
}

// Runner drives the root agent for each run: it loads the session, records
// the user query, applies every emitted state delta to the store and streams
// events to the caller. Public methods are safe for concurrent use.
type Runner struct {
	agent core.Agent

	eventBufferSize int
	maxModelCalls   int

	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	logger        logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Runner for the given root agent with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   100,
		SessionStore:    session.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:           agent,
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		sessionStore:    opts.SessionStore,
		artifactStore:   opts.ArtifactStore,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous pipeline execution for the query. The events
// channel closes when the run completes; the error channel carries at most
// one terminal error.
func (r *Runner) Run(ctx context.Context, sessionID, query string) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("load session: %w", err)
	}

	runID := core.NewID()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.eventBufferSize)

	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	rc := core.NewRunContext(
		ctx,
		sessionID,
		runID,
		core.AgentInfo{Name: r.agent.Name(), Type: "pipeline"},
		query,
		r.maxModelCalls,
		agentEmit,
		sess,
		r.sessionStore,
		r.artifactStore,
		r.logger,
	)

	if err := r.recordQuery(sessionID, runID, query); err != nil {
		cancel()

		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()

		return "", nil, nil, err
	}

	r.logger.Info("Run started", "run_id", runID, "session_id", sessionID)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer func() {
			close(agentEmit)
			wg.Done()
		}()

		if err := r.agent.Run(rc); err != nil && ctx.Err() == nil {
			reportError(errorsCh, fmt.Errorf("pipeline execution failed: %w", err))
		}
	}()

	go func() {
		defer wg.Done()

		r.forwardEvents(ctx, sessionID, agentEmit, eventsCh, errorsCh)
	}()

	// Both channels close only after producer and forwarder have stopped, so
	// no late send can hit a closed channel.
	go func() {
		wg.Wait()

		close(eventsCh)
		close(errorsCh)

		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel requests cooperative termination of an in-flight run.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, ok := r.activeRuns[runID]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// recordQuery persists the query both as session state and as the run's
// opening event.
func (r *Runner) recordQuery(sessionID, runID, query string) error {
	if err := r.sessionStore.ApplyDelta(sessionID, map[string]any{core.StateKeyQuery: query}); err != nil {
		return fmt.Errorf("record query state: %w", err)
	}

	if err := r.sessionStore.AppendEvent(sessionID, core.NewUserQueryEvent(runID, query)); err != nil {
		return fmt.Errorf("record query event: %w", err)
	}

	return nil
}

// forwardEvents persists each agent event (state delta first, then history)
// before handing it to the caller, so an observer never sees an event whose
// state is not yet readable.
func (r *Runner) forwardEvents(
	ctx context.Context,
	sessionID string,
	agentEmit <-chan core.Event,
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-agentEmit:
			if !ok {
				return
			}

			if err := r.persistEvent(sessionID, ev); err != nil {
				reportError(errorsCh, err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case eventsCh <- ev:
				r.logger.Debug("Event delivered", "event_id", ev.ID, "author", ev.Author, "final", ev.Final)
			}
		}
	}
}

// reportError delivers the first terminal error without blocking; later
// errors for the same run are dropped.
func reportError(errorsCh chan<- error, err error) {
	select {
	case errorsCh <- err:
	default:
	}
}

func (r *Runner) persistEvent(sessionID string, ev core.Event) error {
	if len(ev.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.StateDelta); err != nil {
			return fmt.Errorf("apply state delta: %w", err)
		}
	}

	if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	if ev.Final {
		r.saveFinalSummary(sessionID, ev)
	}

	return nil
}

// saveFinalSummary archives the consolidated summary as an artifact. Failures
// are logged, not fatal; the summary is still in session state.
func (r *Runner) saveFinalSummary(sessionID string, ev core.Event) {
	summary, ok := ev.StateDelta[core.StateKeyFinalSummary].(string)
	if !ok || summary == "" {
		return
	}

	if err := r.artifactStore.Save(sessionID, FinalSummaryArtifactID, []byte(summary)); err != nil {
		r.logger.Warn("Failed to save final summary artifact", "session_id", sessionID, "error", err)
	}
}

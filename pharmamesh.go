// Package pharmamesh provides a high-level facade over the analysis pipeline:
// configuration, stores, model adapters, the five pipeline agents and the
// runner, wired together behind a small API. Most applications interact with
// this package by:
//  1. Creating a Pipeline via New() (optionally overriding stores, model or relay)
//  2. Running queries synchronously (RunSync) or as an event stream (Run)
//  3. Optionally delivering the consolidated report by email (SendReport)
//
// All defaults are safe for local development: in-memory stores, the seeded
// graph and clinical-document fixtures, deterministic fallback embeddings and
// a mock email relay.
package pharmamesh

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/pharmamesh/agent"
	"github.com/hupe1980/pharmamesh/artifact"
	"github.com/hupe1980/pharmamesh/capa"
	"github.com/hupe1980/pharmamesh/config"
	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/graph"
	"github.com/hupe1980/pharmamesh/logging"
	"github.com/hupe1980/pharmamesh/model"
	anthropicmodel "github.com/hupe1980/pharmamesh/model/anthropic"
	geminimodel "github.com/hupe1980/pharmamesh/model/gemini"
	openaimodel "github.com/hupe1980/pharmamesh/model/openai"
	"github.com/hupe1980/pharmamesh/notify"
	"github.com/hupe1980/pharmamesh/runner"
	"github.com/hupe1980/pharmamesh/session"
	"github.com/hupe1980/pharmamesh/vector"
)

// Options configures the Pipeline. Any unset dependency is built from the
// Config (stores, model, embedder, relay), so overrides are only needed for
// tests or custom backends.
type Options struct {
	// Config drives the construction of all defaulted dependencies.
	Config config.Config

	// SessionStore persists session state and event history.
	SessionStore core.SessionStore

	// ArtifactStore persists rendered run outputs.
	ArtifactStore core.ArtifactStore

	// CapaStore supplies structured CAPA records. Nil lets the record stage
	// degrade gracefully.
	CapaStore *capa.FileStore

	// GraphStore supplies the investigation knowledge graph.
	GraphStore *graph.InMemoryStore

	// Index is the clinical document similarity index.
	Index *vector.Index

	// Model is the generative model used by the decomposer, the document
	// search summarizer and the consolidator.
	Model model.Model

	// Relay delivers composed report emails.
	Relay notify.Relay

	// Logger is shared by all components.
	Logger logging.Logger
}

// Result aggregates everything a completed run produced.
type Result struct {
	SessionID    string             `json:"session_id"`
	RunID        string             `json:"run_id"`
	Query        string             `json:"query"`
	Breakdown    agent.Breakdown    `json:"breakdown"`
	RecordResult agent.RecordResult `json:"record_result"`
	GraphResult  agent.GraphResult  `json:"graph_result"`
	SearchResult agent.SearchResult `json:"search_result"`
	FinalSummary string             `json:"final_summary"`
	Events       []core.Event       `json:"-"`
}

// Pipeline is the wired analysis system: stores, agents, runner and notifier.
type Pipeline struct {
	opts     Options
	runner   *runner.Runner
	notifier *notify.Notifier
	logger   logging.Logger
}

// New constructs a Pipeline from the given configuration and overrides.
func New(ctx context.Context, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config

	if opts.Model == nil {
		m, err := buildModel(ctx, cfg)
		if err != nil {
			return nil, err
		}

		opts.Model = m
	}

	if opts.Index == nil {
		idx, err := buildIndex(ctx, cfg, opts.Logger)
		if err != nil {
			return nil, err
		}

		opts.Index = idx
	}

	if opts.CapaStore == nil {
		opts.CapaStore = buildCapaStore(cfg, opts.Logger)
	}

	if opts.GraphStore == nil {
		opts.GraphStore = graph.NewInMemoryStore()
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	if opts.ArtifactStore == nil {
		store, err := buildArtifactStore(cfg)
		if err != nil {
			return nil, err
		}

		opts.ArtifactStore = store
	}

	if opts.Relay == nil {
		opts.Relay = buildRelay(cfg, opts.Logger)
	}

	root := agent.NewSequentialAgent("pharma_pipeline",
		agent.NewQueryDecomposer(opts.Model),
		agent.NewRecordFilterAgent(opts.CapaStore),
		agent.NewGraphLookupAgent(opts.GraphStore),
		agent.NewDocSearchAgent(opts.Index, opts.Model),
		agent.NewConsolidator(opts.Model),
	)

	r := runner.New(root, func(o *runner.Options) {
		o.MaxModelCalls = cfg.Model.MaxCalls
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.Logger = opts.Logger
	})

	notifier := notify.NewNotifier(opts.Relay, func(o *notify.NotifierOptions) {
		o.Recipient = cfg.Email.Recipient
		o.Sender = cfg.Email.Sender
		o.Logger = opts.Logger
	})

	return &Pipeline{opts: opts, runner: r, notifier: notifier, logger: opts.Logger}, nil
}

// Run starts an asynchronous pipeline execution. See core.Runner for channel
// semantics.
func (p *Pipeline) Run(ctx context.Context, sessionID, query string) (string, <-chan core.Event, <-chan error, error) {
	return p.runner.Run(ctx, sessionID, query)
}

// RunSync executes the pipeline for the query in a fresh session, drains the
// event stream and returns the aggregated result.
func (p *Pipeline) RunSync(ctx context.Context, query string) (Result, error) {
	sessionID := core.NewID()

	runID, events, errs, err := p.runner.Run(ctx, sessionID, query)
	if err != nil {
		return Result{}, err
	}

	result := Result{SessionID: sessionID, RunID: runID, Query: query}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if err, open := <-errs; open && err != nil {
					return result, err
				}

				p.collect(&result)

				return result, nil
			}

			result.Events = append(result.Events, ev)
		case err := <-errs:
			if err != nil {
				return result, err
			}
		}
	}
}

// collect copies the stage results out of the session state.
func (p *Pipeline) collect(result *Result) {
	sess, err := p.opts.SessionStore.Get(result.SessionID)
	if err != nil {
		p.logger.Warn("Failed to load session for result collection", "session_id", result.SessionID, "error", err)
		return
	}

	if v, ok := sess.GetState(core.StateKeyBreakdown); ok {
		if b, ok := v.(agent.Breakdown); ok {
			result.Breakdown = b
		}
	}

	if v, ok := sess.GetState(core.StateKeyRecordResult); ok {
		if r, ok := v.(agent.RecordResult); ok {
			result.RecordResult = r
		}
	}

	if v, ok := sess.GetState(core.StateKeyGraphResult); ok {
		if g, ok := v.(agent.GraphResult); ok {
			result.GraphResult = g
		}
	}

	if v, ok := sess.GetState(core.StateKeySearchResult); ok {
		if s, ok := v.(agent.SearchResult); ok {
			result.SearchResult = s
		}
	}

	if v, ok := sess.GetState(core.StateKeyFinalSummary); ok {
		if s, ok := v.(string); ok {
			result.FinalSummary = s
		}
	}
}

// Cancel requests cooperative termination of an in-flight run.
func (p *Pipeline) Cancel(runID string) error {
	return p.runner.Cancel(runID)
}

// SendReport composes the email report from a run result and delivers it via
// the configured relay.
func (p *Pipeline) SendReport(ctx context.Context, result Result) (notify.Receipt, error) {
	return p.notifier.SendReport(ctx, notify.ReportData{
		Query:        result.Query,
		FinalSummary: result.FinalSummary,
		Record:       &result.RecordResult,
		Graph:        &result.GraphResult,
		Search:       &result.SearchResult,
	})
}

// ValidateDelivery checks that the configured relay is ready to send mail.
func (p *Pipeline) ValidateDelivery(ctx context.Context) error {
	return p.opts.Relay.Validate(ctx)
}

func buildModel(ctx context.Context, cfg config.Config) (model.Model, error) {
	switch cfg.Model.Provider {
	case "gemini":
		m, err := geminimodel.NewModel(ctx, func(o *geminimodel.Options) {
			o.Model = cfg.Model.Gemini.Model
			o.APIKey = cfg.Model.Gemini.APIKey
		})
		if err != nil {
			return nil, fmt.Errorf("build gemini model: %w", err)
		}

		return m, nil
	case "openai":
		client := openaisdk.NewClient(option.WithAPIKey(cfg.Model.OpenAI.APIKey))

		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			o.Model = cfg.Model.OpenAI.Model
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(cfg.Model.Anthropic.Model)
			o.APIKey = cfg.Model.Anthropic.APIKey
		}), nil
	case "mock":
		return model.NewMockModel("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

// buildIndex creates the clinical document index seeded with the canned
// corpus. With a Gemini API key the documents are embedded remotely;
// otherwise the deterministic fallback embedder keeps the index functional
// offline.
func buildIndex(ctx context.Context, cfg config.Config, logger logging.Logger) (*vector.Index, error) {
	var embedder vector.Embedder

	if cfg.Model.Gemini.APIKey != "" {
		e, err := geminimodel.NewEmbedder(ctx, func(o *geminimodel.EmbedderOptions) {
			o.Model = cfg.Model.Gemini.EmbeddingModel
			o.APIKey = cfg.Model.Gemini.APIKey
		})
		if err != nil {
			return nil, fmt.Errorf("build gemini embedder: %w", err)
		}

		embedder = vector.NewResilientEmbedder(e, func(o *vector.ResilientEmbedderOptions) {
			o.Logger = logger
		})
	} else {
		embedder = vector.NewFallbackEmbedder()
	}

	idx := vector.NewIndex(embedder, func(o *vector.IndexOptions) {
		o.Logger = logger
	})

	if err := vector.SeedClinicalCorpus(ctx, idx); err != nil {
		return nil, fmt.Errorf("seed clinical corpus: %w", err)
	}

	return idx, nil
}

// buildCapaStore loads the record file when it exists. A missing or broken
// file is a degraded state, not a construction error; the record stage
// reports it in its result.
func buildCapaStore(cfg config.Config, logger logging.Logger) *capa.FileStore {
	path := cfg.Data.CapaFile
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		logger.Warn("CAPA file not accessible, record stage will degrade", "path", path, "error", err)
		return nil
	}

	store := capa.NewFileStore(path, func(o *capa.StoreOptions) {
		o.Logger = logger
	})

	if err := store.Load(); err != nil {
		logger.Warn("Failed to load CAPA file, record stage will degrade", "path", path, "error", err)
		return nil
	}

	return store
}

func buildArtifactStore(cfg config.Config) (core.ArtifactStore, error) {
	if cfg.Data.ArtifactDir == "" {
		return artifact.NewInMemoryStore(), nil
	}

	store, err := artifact.NewFileStore(cfg.Data.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("build artifact store: %w", err)
	}

	return store, nil
}

func buildRelay(cfg config.Config, logger logging.Logger) notify.Relay {
	if cfg.Email.MockMode {
		return notify.NewMockRelay(func(o *notify.MockRelayOptions) {
			o.LogPath = cfg.Email.MockLogPath
			o.Logger = logger
		})
	}

	return notify.NewSMTPRelay(func(o *notify.SMTPRelayOptions) {
		o.Host = cfg.Email.SMTP.Server
		o.Port = cfg.Email.SMTP.Port
		o.Username = cfg.Email.SMTP.Username
		o.Password = cfg.Email.SMTP.Password
		o.UseTLS = cfg.Email.SMTP.UseTLS
		o.Logger = logger
	})
}

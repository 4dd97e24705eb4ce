package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/model"
)

// decomposerInstructions steer the model towards exactly three sub-questions,
// one per downstream stage, returned as JSON.
const decomposerInstructions = `You are an expert pharmaceutical data analyst. Your task is to break down complex user queries
into specific sub-questions that can be handled by specialized agents.

Available agents and their capabilities:
1. CAPA Agent: Reads and analyzes CAPA (Corrective and Preventive Action) data from text files
2. Graph Agent: Queries the knowledge graph for investigation details, brands, batches, and PDF links
3. Vector Agent: Searches the vector index for clinical trial summaries and embedded document content
4. Email Agent: Sends consolidated summaries via email

For the given query, break it down into 3 specific sub-questions:
- Q1: Should focus on CAPA data analysis (count, status, timeframe)
- Q2: Should focus on graph investigation queries (brand-specific, with CAPA relationships)
- Q3: Should focus on vector search for clinical trial summaries

Respond with JSON in this format:
{
    "reasoning": "Your chain-of-thought reasoning for the breakdown",
    "sub_questions": [
        "Q1: Specific CAPA-related question",
        "Q2: Specific graph investigation question",
        "Q3: Specific vector search question"
    ],
    "agent_mapping": {
        "capa_agent": "Q1 description",
        "graph_agent": "Q2 description",
        "vector_agent": "Q3 description"
    }
}`

// QueryDecomposerOptions configures a QueryDecomposer.
type QueryDecomposerOptions struct {
	Temperature float64
}

// QueryDecomposer is the first pipeline stage. It asks the model to split the
// user query into one sub-question per downstream stage. When the model call
// or the JSON parse fails it falls back to a canned breakdown so the rest of
// the pipeline always has sub-questions to work with.
type QueryDecomposer struct {
	BaseAgent
	model model.Model
	opts  QueryDecomposerOptions
}

// NewQueryDecomposer creates the decomposition stage.
func NewQueryDecomposer(m model.Model, optFns ...func(o *QueryDecomposerOptions)) *QueryDecomposer {
	opts := QueryDecomposerOptions{Temperature: 0.1}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &QueryDecomposer{
		BaseAgent: NewBaseAgent("query_decomposer"),
		model:     m,
		opts:      opts,
	}
	a.SetDescription("Breaks the user query into sub-questions for the specialized pipeline stages")

	return a
}

// Run implements core.Agent.
func (a *QueryDecomposer) Run(rc *core.RunContext) error {
	breakdown, err := a.decompose(rc)
	if err != nil {
		if rc.Err() != nil {
			return rc.Err()
		}

		rc.Logger.Warn("Query breakdown failed, using fallback", "error", err.Error())
		breakdown = fallbackBreakdown()
	}

	rc.SetState(core.StateKeyBreakdown, breakdown)

	return a.emitMessage(rc, fmt.Sprintf("Query broken down into %d sub-questions", len(breakdown.SubQuestions)))
}

func (a *QueryDecomposer) decompose(rc *core.RunContext) (Breakdown, error) {
	if err := rc.Limiter.Increment(); err != nil {
		return Breakdown{}, err
	}

	text, err := model.GenerateText(rc.Context, a.model, model.Request{
		Instructions: decomposerInstructions,
		Contents: []core.Content{
			core.NewTextContent("user", fmt.Sprintf("User Query: %s", rc.Query)),
		},
		Temperature:  model.Temperature(a.opts.Temperature),
		ResponseJSON: true,
	})
	if err != nil {
		return Breakdown{}, err
	}

	var breakdown Breakdown
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &breakdown); err != nil {
		return Breakdown{}, fmt.Errorf("failed to parse breakdown response: %w", err)
	}

	if len(breakdown.SubQuestions) == 0 {
		return Breakdown{}, fmt.Errorf("breakdown contains no sub-questions")
	}

	return breakdown, nil
}

// fallbackBreakdown is used whenever the model cannot produce a usable
// breakdown.
func fallbackBreakdown() Breakdown {
	return Breakdown{
		Reasoning: "Fallback breakdown due to API error",
		SubQuestions: []string{
			"Q1: How many open CAPA are present in the last 1 year?",
			"Q2: Fetch Investigation details for brand 'Avino' including CAPA ID, Investigation Name, Brand, Batch Number, PDF Link",
			"Q3: Retrieve clinical trial summary for brand 'Avino' from vector database",
		},
		AgentMapping: map[string]string{
			"capa_agent":   "Analyze CAPA data file for open CAPAs in specified timeframe",
			"graph_agent":  "Query knowledge graph for Avino brand investigations",
			"vector_agent": "Search embedded clinical trial documents for Avino summaries",
		},
	}
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// wrap around JSON output even in JSON response mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

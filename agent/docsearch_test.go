package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/pharmamesh/core"
	"github.com/hupe1980/pharmamesh/graph"
	"github.com/hupe1980/pharmamesh/model"
	"github.com/hupe1980/pharmamesh/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededIndex(t *testing.T, optFns ...func(o *vector.IndexOptions)) *vector.Index {
	t.Helper()
	idx := vector.NewIndex(vector.NewFallbackEmbedder(), optFns...)
	require.NoError(t, vector.SeedClinicalCorpus(context.Background(), idx))
	return idx
}

func TestDocSearchAgentCollectsPDFLinks(t *testing.T) {
	rc, events := newTestRunContext(t, "query")

	rc.SetState(core.StateKeyGraphResult, GraphResult{
		Success: true,
		Investigations: []EnrichedInvestigation{
			{Investigation: graph.Investigation{ID: "INV001", PDFLink: "https://documents.company.com/investigations/INV001.pdf"}},
			{Investigation: graph.Investigation{ID: "INV002", PDFLink: "https://documents.company.com/investigations/INV002.pdf"}},
		},
	})

	a := NewDocSearchAgent(seededIndex(t), model.NewMockModel("mock", "mock"))
	require.NoError(t, a.Run(rc))

	ev := nextEvent(t, events)
	result := ev.StateDelta[core.StateKeySearchResult].(SearchResult)

	assert.True(t, result.Success)
	assert.Len(t, result.PDFLinks, 2)
	assert.Equal(t, "clinical trial summary for brand Avino", result.Query)
}

func TestDocSearchAgentNoRelevantDocuments(t *testing.T) {
	// The deterministic embedder gives unrelated texts near-zero similarity,
	// so nothing clears the relevance threshold.
	rc, _ := newTestRunContext(t, "query")

	a := NewDocSearchAgent(seededIndex(t), model.NewMockModel("mock", "mock"))
	require.NoError(t, a.Run(rc))

	v, ok := rc.Session.GetState(core.StateKeySearchResult)
	require.True(t, ok)

	result := v.(SearchResult)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.DocumentsFound)
	assert.Empty(t, result.Summary)
}

func TestDocSearchAgentSummarizesHighConfidenceHits(t *testing.T) {
	idx := seededIndex(t)

	// Index a chunk whose text equals the stage's search query, which scores
	// 1.0 and passes the summary cutoff.
	_, err := idx.Add(context.Background(),
		"clinical trial summary for brand Avino",
		map[string]any{"brand": "Avino"})
	require.NoError(t, err)

	mock := model.NewMockModel("mock", "mock")
	rc, _ := newTestRunContext(t, "query")

	a := NewDocSearchAgent(idx, mock)
	require.NoError(t, a.Run(rc))

	v, _ := rc.Session.GetState(core.StateKeySearchResult)
	result := v.(SearchResult)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.DocumentsFound)
	assert.True(t, strings.HasPrefix(result.Summary, "Mock response to:"))
}

func TestDocSearchAgentLowConfidenceHitsSkipSummaryModel(t *testing.T) {
	// Drop the index threshold so weak hits are returned; none clear the
	// stricter summary cutoff, so the stage reports without a model call.
	idx := seededIndex(t, func(o *vector.IndexOptions) { o.Threshold = -1 })

	rc, _ := newTestRunContext(t, "query")

	a := NewDocSearchAgent(idx, model.NewMockModel("mock", "mock"))
	require.NoError(t, a.Run(rc))

	v, _ := rc.Session.GetState(core.StateKeySearchResult)
	result := v.(SearchResult)

	assert.True(t, result.Success)
	assert.Equal(t, 4, result.DocumentsFound)
	assert.Equal(t, "No high-confidence clinical trial data found for brand Avino.", result.Summary)
	assert.Equal(t, 0, rc.Limiter.Count())
}

func TestDocSearchAgentWithoutIndexDegrades(t *testing.T) {
	rc, events := newTestRunContext(t, "query")

	a := NewDocSearchAgent(nil, model.NewMockModel("mock", "mock"))
	require.NoError(t, a.Run(rc))

	ev := nextEvent(t, events)
	result := ev.StateDelta[core.StateKeySearchResult].(SearchResult)
	assert.False(t, result.Success)
	assert.Equal(t, "no vector index configured", result.Error)
}

package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, optFns ...func(o *IndexOptions)) *Index {
	t.Helper()
	idx := NewIndex(NewFallbackEmbedder(), optFns...)
	require.NoError(t, SeedClinicalCorpus(context.Background(), idx))
	return idx
}

func TestFallbackEmbedderDeterministic(t *testing.T) {
	e := NewFallbackEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "clinical trial summary")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "clinical trial summary")
	require.NoError(t, err)
	c, err := e.Embed(ctx, "different text")
	require.NoError(t, err)

	assert.Len(t, a, FallbackDimensions)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// Unit length after normalization.
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-6)
}

func TestFallbackEmbedderRejectsEmptyText(t *testing.T) {
	_, err := NewFallbackEmbedder().Embed(context.Background(), "")
	assert.Error(t, err)
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("api unavailable")
}
func (failingEmbedder) Dimensions() int { return FallbackDimensions }

func TestResilientEmbedderFallsBack(t *testing.T) {
	ctx := context.Background()
	e := NewResilientEmbedder(failingEmbedder{})

	vec, err := e.Embed(ctx, "clinical trial summary")
	require.NoError(t, err)

	// The degraded path is the deterministic fallback.
	want, err := NewFallbackEmbedder().Embed(ctx, "clinical trial summary")
	require.NoError(t, err)
	assert.Equal(t, want, vec)

	_, err = e.Embed(ctx, "")
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, CosineSimilarity(nil, nil))
}

func TestIndexAddGetDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	assert.Equal(t, 4, idx.Len())

	id, err := idx.Add(ctx, "New stability report", map[string]any{"brand": "Avino"})
	require.NoError(t, err)
	assert.Equal(t, "doc_005", id)

	doc, ok := idx.Get(id)
	require.True(t, ok)
	assert.Equal(t, "New stability report", doc.Content)
	assert.NotEmpty(t, doc.Embedding)

	require.NoError(t, idx.Delete(id))
	_, ok = idx.Get(id)
	assert.False(t, ok)

	assert.Error(t, idx.Delete("doc_999"))
}

func TestIndexUpdate(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	orig, ok := idx.Get("doc_001")
	require.True(t, ok)

	content := "Amended clinical trial results"
	require.NoError(t, idx.Update(ctx, "doc_001", &content, map[string]any{"revision": 2}))

	updated, ok := idx.Get("doc_001")
	require.True(t, ok)
	assert.Equal(t, content, updated.Content)
	assert.NotEqual(t, orig.Embedding, updated.Embedding)
	assert.Equal(t, 2, updated.Metadata["revision"])
	assert.Equal(t, "Avino", updated.Metadata["brand"]) // Existing keys survive merge
	assert.False(t, updated.UpdatedAt.IsZero())

	assert.Error(t, idx.Update(ctx, "doc_999", nil, nil))
}

func TestSearchExactContentScoresHighest(t *testing.T) {
	idx := newTestIndex(t)

	// Querying with a document's own text gives cosine 1.0 under the
	// deterministic embedder.
	doc, ok := idx.Get("doc_002")
	require.True(t, ok)

	results, err := idx.Search(context.Background(), doc.Content)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "doc_002", results[0].Document.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestSearchThresholdExcludesUnrelated(t *testing.T) {
	idx := newTestIndex(t)

	// Unrelated query text embeds to a near-orthogonal vector, below the
	// relevance threshold.
	results, err := idx.Search(context.Background(), "completely unrelated query text")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchWithFilters(t *testing.T) {
	idx := newTestIndex(t, func(o *IndexOptions) { o.Threshold = -1 })
	ctx := context.Background()

	t.Run("string filter is substring match", func(t *testing.T) {
		results, err := idx.Search(ctx, "safety", func(o *SearchOptions) {
			o.Filters = map[string]any{"document_type": "safety"}
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "doc_002", results[0].Document.ID)
	})

	t.Run("non string filter requires equality", func(t *testing.T) {
		results, err := idx.Search(ctx, "report", func(o *SearchOptions) {
			o.Filters = map[string]any{"page": 2}
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "doc_003", results[0].Document.ID)
	})

	t.Run("missing key excludes document", func(t *testing.T) {
		results, err := idx.Search(ctx, "report", func(o *SearchOptions) {
			o.Filters = map[string]any{"trial_phase": "Phase III"}
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "doc_001", results[0].Document.ID)
	})
}

func TestSearchTopKLimit(t *testing.T) {
	idx := newTestIndex(t, func(o *IndexOptions) { o.Threshold = -1 })

	results, err := idx.Search(context.Background(), "avino", func(o *SearchOptions) { o.TopK = 2 })
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchBySource(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.SearchBySource(context.Background(), "anything",
		"https://documents.company.com/investigations/INV001.pdf", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc_001", results[0].Document.ID)

	none, err := idx.SearchBySource(context.Background(), "anything", "https://unknown.pdf", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSimilarTo(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.SimilarTo("doc_001", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, "doc_001", r.Document.ID)
	}

	_, err = idx.SimilarTo("doc_999", 5)
	assert.Error(t, err)
}

package vector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/pharmamesh/logging"
)

// Default search parameters.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
	SourceSearchTopK = 3
)

// Document is an indexed text chunk with its embedding and metadata.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"-"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// SearchResult pairs a document with its similarity score for one query.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// IndexOptions configures an Index.
type IndexOptions struct {
	Logger    logging.Logger
	Threshold float64 // Minimum similarity for a search hit
}

// Index is an in-memory vector index with metadata filtering. All methods are
// safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	docs     []Document
	nextID   int
	embedder Embedder
	opts     IndexOptions
}

// NewIndex creates an empty index backed by the given embedder.
func NewIndex(embedder Embedder, optFns ...func(o *IndexOptions)) *Index {
	opts := IndexOptions{
		Logger:    logging.NoOpLogger{},
		Threshold: DefaultThreshold,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Index{embedder: embedder, nextID: 1, opts: opts}
}

// Add embeds the content and stores it as a new document, returning the
// generated document id.
func (x *Index) Add(ctx context.Context, content string, metadata map[string]any) (string, error) {
	embedding, err := x.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to embed document: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	id := fmt.Sprintf("doc_%03d", x.nextID)
	x.nextID++

	if metadata == nil {
		metadata = map[string]any{}
	}

	x.docs = append(x.docs, Document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	})

	x.opts.Logger.Debug("Indexed document", "id", id, "content_len", len(content))

	return id, nil
}

// Get returns the document with the given id.
func (x *Index) Get(id string) (Document, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, doc := range x.docs {
		if doc.ID == id {
			return doc, true
		}
	}

	return Document{}, false
}

// Update replaces content and/or merges metadata on an existing document.
// Changed content is re-embedded.
func (x *Index) Update(ctx context.Context, id string, content *string, metadata map[string]any) error {
	var embedding []float32
	if content != nil {
		var err error
		embedding, err = x.embedder.Embed(ctx, *content)
		if err != nil {
			return fmt.Errorf("failed to re-embed document: %w", err)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range x.docs {
		if x.docs[i].ID != id {
			continue
		}
		if content != nil {
			x.docs[i].Content = *content
			x.docs[i].Embedding = embedding
		}
		for k, v := range metadata {
			x.docs[i].Metadata[k] = v
		}
		x.docs[i].UpdatedAt = time.Now().UTC()
		return nil
	}

	return fmt.Errorf("document %s not found", id)
}

// Delete removes a document from the index.
func (x *Index) Delete(id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range x.docs {
		if x.docs[i].ID == id {
			x.docs = append(x.docs[:i], x.docs[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("document %s not found", id)
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// SearchOptions narrow a similarity search.
type SearchOptions struct {
	TopK    int
	Filters map[string]any // Metadata constraints, all must match
}

// Search embeds the query and returns documents above the relevance
// threshold, ranked by cosine similarity. Filter values of string type match
// as case-insensitive substrings; any other type requires equality. A filter
// key absent from a document's metadata excludes that document.
func (x *Index) Search(ctx context.Context, query string, optFns ...func(o *SearchOptions)) ([]SearchResult, error) {
	opts := SearchOptions{TopK: DefaultTopK}

	for _, fn := range optFns {
		fn(&opts)
	}

	queryEmbedding, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []SearchResult
	for _, doc := range x.docs {
		if !matchesFilters(doc.Metadata, opts.Filters) {
			continue
		}

		score := CosineSimilarity(queryEmbedding, doc.Embedding)
		if score <= x.opts.Threshold {
			continue
		}

		results = append(results, SearchResult{Document: doc, Score: score})
	}

	sortByScore(results)

	if opts.TopK > 0 && len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	x.opts.Logger.Debug("Vector search completed", "results", len(results), "top_k", opts.TopK)

	return results, nil
}

// SearchBySource scores all chunks from one source document against the
// query, without applying the relevance threshold.
func (x *Index) SearchBySource(ctx context.Context, query, source string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = SourceSearchTopK
	}

	queryEmbedding, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []SearchResult
	for _, doc := range x.docs {
		src, _ := doc.Metadata["source"].(string)
		if src != source {
			continue
		}
		results = append(results, SearchResult{
			Document: doc,
			Score:    CosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	sortByScore(results)

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// SimilarTo finds the documents most similar to an already indexed one,
// excluding the document itself.
func (x *Index) SimilarTo(id string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	ref, ok := x.Get(id)
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var results []SearchResult
	for _, doc := range x.docs {
		if doc.ID == id {
			continue
		}
		results = append(results, SearchResult{
			Document: doc,
			Score:    CosineSimilarity(ref.Embedding, doc.Embedding),
		})
	}

	sortByScore(results)

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

func sortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func matchesFilters(metadata, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if s, isString := want.(string); isString {
			if !strings.Contains(strings.ToLower(fmt.Sprintf("%v", got)), strings.ToLower(s)) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

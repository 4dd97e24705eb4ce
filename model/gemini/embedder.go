package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// EmbedderOptions configures the Gemini embedder. TaskType is the embedding
// task type string defined by the Gemini API, e.g. "SEMANTIC_SIMILARITY" or
// "RETRIEVAL_DOCUMENT".
type EmbedderOptions struct {
	Model    string
	TaskType string
	APIKey   string
}

// Embedder generates text embeddings via the Gemini embed-content API.
// It satisfies the vector.Embedder interface.
type Embedder struct {
	client *genai.Client
	opts   EmbedderOptions
}

// NewEmbedder creates a new Gemini embedder.
func NewEmbedder(ctx context.Context, optFns ...func(o *EmbedderOptions)) (*Embedder, error) {
	opts := EmbedderOptions{
		Model:    "gemini-embedding-001",
		TaskType: "SEMANTIC_SIMILARITY",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: opts.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Embedder{client: client, opts: opts}, nil
}

// NewEmbedderFromClient creates a new Gemini embedder from an existing client.
func NewEmbedderFromClient(client *genai.Client, optFns ...func(o *EmbedderOptions)) *Embedder {
	opts := EmbedderOptions{
		Model:    "gemini-embedding-001",
		TaskType: "SEMANTIC_SIMILARITY",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Embedder{client: client, opts: opts}
}

// Embed generates an embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.opts.Model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: e.opts.TaskType,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.opts.Model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: e.opts.TaskType,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed failed: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}

	return embeddings, nil
}

// Dimensions returns the embedding dimensionality.
// gemini-embedding-001 produces 768-dimensional vectors.
func (e *Embedder) Dimensions() int {
	return 768
}
